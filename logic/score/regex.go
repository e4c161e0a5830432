package score

// 各字段的改写表，输入均已 normalize

var firstNameRules = []rule{
	once(`^(inconnu|spc?|sans prenom( connu)?|x+)$`, ""),
}

var lastNameRules = []rule{
	once(`^(mr|mme|mlle|monsieur|madame|mademoiselle)\s+`, ""),
	once(`^(inconnu|snc?|sans nom( connu)?|x+)$`, ""),
}

// stopNameRules 去掉贵族/介词小品词
var stopNameRules = []rule{
	once(`(^|\s)de (los|la)\s+`, "${1}"),
	once(`(^|\s)(baron|marquis|duc|vicomte|prince|chevalier)\s+`, "${1}"),
	once(`(^|\s)(ait|ben|du|de|l|d|dos|del|le|el)\s+`, "${1}"),
	once(`\s+(du|de la|des|de|le|aux|de los|del|l|d)\s+`, " "),
	once(`(^|\s)st\s+`, "${1}saint "),
}

var cityRules = []rule{
	once(`^\s*(lyon|marseille|paris)(\s.*|\s*\d\d*.*|.*art.*|.*arr.*)$`, "${1}"),
	once(`(^|\s)ste(\s|$)`, "${1}sainte${2}"),
	once(`(^|\s)st(\s|$)`, "${1}saint${2}"),
	once(`^aix pce$`, "aix provence"),
	every(`(^|\s)(de|en|les|le|la|a|aux|au|du|de la|sous|ss?|sur|l|d|des)\s`, " "),
	every(`(^|\s)(de|en|les|le|la|a|aux|au|du|de la|sous|ss?|sur|l|d|des)\s`, " "),
	once(`^x$`, ""),
	every(`\s+`, " "),
	once(`^.*inconnu.*$`, ""),
	once(`sainte clotilde`, "saint denis"),
	once(`berck mer`, "berck"),
	once(`montreuil( s.*)? bois`, "montreuil"),
	once(`asnieres( s.*)? seine`, "asnieres"),
	once(`clichy garenne.*`, "clichy"),
	once(`belleville saone`, "belleville"),
	once(`^\s*levallois\s*$`, "levallois perret"),
	every(`^\s+|\s+$`, ""),
}

var boroughRules = []rule{
	once(`^\D*0*([1-9]+0?)\D*$`, "${1}"),
}

var depCodeRules = []rule{
	once(`^0?2[ab]$`, "20"),
	once(`^0*([1-9]+0?)$`, "${1}"),
	once(`^(\D*|99|0)$`, ""),
}

var countryRules = []rule{
	every(`(^|\s)(de|en|les|le|la|a|aux|au|du|de la|s|sous|sur|l|d|des)\s`, " "),
	once(`hollande`, "pays bas"),
	once(`(angleterre|grande bretagne)`, "royaume uni"),
	once(`vietnam`, "viet nam"),
	every(`^\s+|\s+$`, ""),
}

// seineDepartments 旧塞纳省拆分出的省份
var seineDepartments = map[string]bool{
	"78": true, "91": true, "92": true, "93": true, "94": true, "95": true,
}

var boroughCities = map[string]bool{
	"paris": true, "lyon": true, "marseille": true,
}
