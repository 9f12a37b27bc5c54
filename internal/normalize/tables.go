package normalize

// Replacement is one substring fix: every occurrence of From becomes To.
type Replacement struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// EncodingFixes repairs accents, ligatures and punctuation as they come out
// of PDF text layers. Keys are lowercase since they are applied after
// lowercasing. Order matters: multi-rune artefacts come before the single
// accented letters they may contain.
var EncodingFixes = []Replacement{
	{", ˘a", "a"},
	{"\u00a0", " "},
	{"`a", "a"},
	{"`e", "e"},
	{"`o", "o"},
	{"c¸", "c"},
	{"s¸", "s"},
	{"¨o", "o"},
	{"¨u", "u"},
	{"´a", "a"},
	{"´c", "c"},
	{"´e", "e"},
	{"´n", "n"},
	{"´o", "o"},
	{"´u", "u"},
	{"´y", "y"},
	{"´ı", "i"},
	{"ß", "ss"},
	{"à", "a"},
	{"á", "a"},
	{"ã", "a"},
	{"ä", "a"},
	{"å", "a"},
	{"ç", "c"},
	{"è", "e"},
	{"é", "e"},
	{"ë", "e"},
	{"í", "i"},
	{"î", "i"},
	{"ï", "i"},
	{"â", "a"},
	{"ê", "e"},
	{"ô", "o"},
	{"û", "u"},
	{"ñ", "n"},
	{"ò", "o"},
	{"ó", "o"},
	{"ö", "o"},
	{"ø", "oe"},
	{"ú", "u"},
	{"ü", "u"},
	{"ý", "y"},
	{"ă", "a"},
	{"ć", "c"},
	{"č", "c"},
	{"ę", "e"},
	{"ğ", "g"},
	{"ı", "i"},
	{"ł", "l"},
	{"ń", "n"},
	{"ņ", "n"},
	{"ň", "n"},
	{"œ", "oe"},
	{"ř", "r"},
	{"ş", "s"},
	{"š", "s"},
	{"ū", "u"},
	{"ů", "u"},
	{"ˆe", "e"},
	{"ˆı", "i"},
	{"ˇc", "c"},
	{"ˇr", "r"},
	{"ˇs", "s"},
	{"˘g", "g"},
	{"˚a", "a"},
	{"˚u", "u"},
	{"˛e", "e"},
	{"˜a", "a"},
	{"˜n", "n"},
	{"’", "'"},
	{`"o`, "o"},

	// Ligatures
	{"ﬁ", "fi"},
	{"ﬂ", "fl"},
	{"ﬀ", "ff"},
	{"ﬃ", "ffi"},
	{"ﬄ", "ffl"},
}

// NameFixes maps author spellings found in PDFs to the spelling used by the
// metadata (or both to a common form). Applied after EncodingFixes, so keys
// are lowercase, accent-free and already carry the "x." initials form.
var NameFixes = []Replacement{
	{"md.", "md"},
	{"pappagari raghavendra reddy", "raghavendra reddy pappagari"},
	{"g anushiya rachel", "g. anushiya rachel"},
	{"alan w. black", "alan w black"},
	{"sachin n. kalkur", "sachin n kalkur"},
	{"s. shahnawazuddin", "s shahnawazuddin"},
	{"t. j. tsai", "tj tsai"},
	{"sujith p.", "sujith. p"},
	{"j. -a. gomez-garcia", "j-a. gomez-garcia"},
	{"t. villa-canas", "t.villa-canas"},
	{"g. nisha meenakshi", "g.nisha meenakshi"},
	{"k. ramesh", "ramesh k."},
	{"e. godoy", "elizabeth godoy"},
	{"thi anh xuan tran", "tran thi anh xuan"},
	{"a. apoorv reddy", "apoorv reddy arrabothu"},
	{"james m scobbie", "james m. scobbie"},
	{"thuy n tran", "thuy n. tran"},
	{"nguyen thi thu trang", "thi thu trang nguyen"},
	{"jin jin", "jing zheng"},
	{"david nolden", "david noldena"},
	{"laurianne georgeton", "georgeton laurianne"},
	{"ramani b", "b. ramani"},
	{"c.-t. do", "c. -t. do"},
	{"pettorino massimo", "massimo pettorino"},
	{"levin k.", "k. levin"},
	{"prudnikov a.", "a. prudnikov"},
	{"duan richeng", "richeng duan"},
	{"s aswin shanmugam", "s. aswin shanmugam"},
	{"michael i mandel", "michael i. mandel"},
	{"manson c-m. fong", "manson c. -m. fong"},
	{"murali karthick b", "murali karthick b."},
	{"vikram c. m", "vikram c. m."},
	{"maria k wolters", "maria k. wolters"},
	{"douglas sturim", "douglas e. sturim"},
	{"l. ten bosch", "louis ten bosch"},
	{"john h. l. hansen", "john h.l. hansen"},
	{"jeremy h. m. wong", "jeremy h.m. wong"},
	{"raymond w. m. ng", "raymond w.m. ng"},
	{"k v vijay girish", "k.v. vijay girish"},
	{"emma c. l. leschly", "emma cathrine liisborg leschly"},
	{"dirk eike hoffner", "dirk hoffner"},
	{"dinh-truong do", "truong do"},
	{"lu mingxi", "mingxi lu"},
	{"dashanka de silva", "dashanka da silva"},
	{"mohammed salah al-radhi", "mohammed al-radhi"},
	{"keinichi fujita", "kenichi fujita"},
	{"griffin dietz smith", "griffin smith"},
	{"dominika c woszczyk", "dominika woszczyk"},
	{"ankita ankita", "ankita"},
	{"ahmed adel attia", "ahmed attia"},
	{"hawau olamide toyin", "hawau toyin"},
	{"enes yavuz ugan", "enes ugan"},
	{"zheng-xin yong", "zheng xin yong"},
	{"nagarathna r", "nagarathna ravi"},
	// "nagarathna ravi" itself is hit by the entry above.
	{"nagarathna raviavi", "nagarathna ravi"},
	{"jiaxin chen", "jia-xin chen"},
	{"sai akarsh c", "sai akarsh"},
	{"sarah si chen", "si chen"},
	{"cheng-hung hu", "chenghung hu"},
	{"xiaowang liu", "liu xiaowang"},
}
