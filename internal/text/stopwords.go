package text

// stopwords are ignored when ranking terms. Includes common web/UI noise.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "across": {}, "after": {}, "again": {},
	"against": {}, "all": {}, "almost": {}, "along": {}, "already": {}, "also": {},
	"although": {}, "always": {}, "am": {}, "among": {}, "an": {}, "and": {},
	"another": {}, "any": {}, "anyone": {}, "anything": {}, "are": {}, "around": {},
	"as": {}, "at": {},

	"back": {}, "be": {}, "became": {}, "because": {}, "become": {}, "been": {},
	"before": {}, "behind": {}, "being": {}, "below": {}, "between": {}, "beyond": {},
	"both": {}, "but": {}, "by": {},

	"can": {}, "cannot": {}, "could": {},

	"did": {}, "do": {}, "does": {}, "doing": {}, "done": {}, "down": {}, "during": {},

	"each": {}, "either": {}, "else": {}, "enough": {}, "especially": {}, "etc": {},
	"even": {}, "ever": {}, "every": {}, "everyone": {}, "everything": {},

	"few": {}, "for": {}, "from": {}, "further": {},

	"get": {}, "gets": {}, "got": {},

	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {}, "how": {},
	"however": {},

	"i": {}, "if": {}, "in": {}, "indeed": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "itself": {},

	"just": {},

	"last": {}, "least": {}, "less": {}, "let": {}, "like": {}, "likely": {},

	"made": {}, "make": {}, "makes": {}, "many": {}, "may": {}, "maybe": {}, "me": {},
	"might": {}, "more": {}, "moreover": {}, "most": {}, "mostly": {}, "much": {},
	"must": {}, "my": {}, "myself": {},

	"neither": {}, "never": {}, "new": {}, "next": {}, "no": {}, "nor": {}, "not": {},
	"nothing": {}, "now": {},

	"of": {}, "off": {}, "often": {}, "on": {}, "once": {}, "one": {}, "only": {},
	"onto": {}, "or": {}, "other": {}, "others": {}, "otherwise": {}, "our": {},
	"ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {},

	"per": {}, "perhaps": {}, "please": {}, "put": {},

	"rather": {}, "really": {},

	"same": {}, "see": {}, "seem": {}, "seems": {}, "several": {}, "she": {},
	"should": {}, "since": {}, "so": {}, "some": {}, "someone": {}, "something": {},
	"sometimes": {}, "still": {}, "such": {},

	"take": {}, "than": {}, "that": {}, "the": {}, "their": {}, "theirs": {},
	"them": {}, "themselves": {}, "then": {}, "there": {}, "therefore": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "thus": {},
	"to": {}, "together": {}, "too": {}, "toward": {}, "towards": {},

	"under": {}, "until": {}, "up": {}, "upon": {}, "us": {}, "use": {}, "used": {},
	"using": {},

	"very": {}, "via": {},

	"was": {}, "we": {}, "well": {}, "were": {}, "what": {}, "whatever": {},
	"when": {}, "where": {}, "whether": {}, "which": {}, "while": {}, "who": {},
	"whoever": {}, "whom": {}, "whose": {}, "why": {}, "will": {}, "with": {},
	"within": {}, "without": {}, "would": {},

	"yet": {}, "you": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},

	"click": {}, "button": {}, "link": {}, "menu": {}, "page": {}, "pages": {},
	"website": {}, "site": {}, "home": {}, "homepage": {}, "search": {},
	"loading": {}, "cookie": {}, "cookies": {}, "login": {}, "sign": {},
}

// IsStopword reports whether word (any case) is ignored for ranking.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
