package domain

// PersonalityType es una variante etiquetada; sus atributos viven en personalityTable.
type PersonalityType string

const (
	PersonalityGentleCaring   PersonalityType = "GENTLE_CARING"
	PersonalityLivelyCheerful PersonalityType = "LIVELY_CHEERFUL"
	PersonalityCoolElegant    PersonalityType = "COOL_ELEGANT"
	PersonalityHumorousWitty  PersonalityType = "HUMOROUS_WITTY"
	PersonalitySensitiveShy   PersonalityType = "SENSITIVE_SHY"
	PersonalityRomanticDreamy PersonalityType = "ROMANTIC_DREAMY"
	PersonalityClingySweet    PersonalityType = "CLINGY_SWEET"
	PersonalityRationalCalm   PersonalityType = "RATIONAL_CALM"
)

// ResponseStyle agrupa personalidades para el motor de reglas.
type ResponseStyle string

const (
	StyleGentle   ResponseStyle = "gentle"
	StyleLively   ResponseStyle = "lively"
	StyleCool     ResponseStyle = "cool"
	StyleHumorous ResponseStyle = "humorous"
	StyleNormal   ResponseStyle = "normal"
)

type TraitMarker string

const (
	MarkerSensitive TraitMarker = "sensitive"
	MarkerTolerant  TraitMarker = "tolerant"
	MarkerJealous   TraitMarker = "jealous"
	MarkerInsecure  TraitMarker = "insecure"
	MarkerRomantic  TraitMarker = "romantic"
)

type PersonalityProfile struct {
	Label         string
	ToneWords     []string
	ReactionStyle string
	Style         ResponseStyle
	Examples      []string
	Markers       []TraitMarker
}

var personalityTable = map[PersonalityType]PersonalityProfile{
	PersonalityGentleCaring: {
		Label:         "温柔体贴",
		ToneWords:     []string{"嗯嗯", "好呀", "没关系的"},
		ReactionStyle: "包容安抚型",
		Style:         StyleGentle,
		Examples:      []string{"今天累不累呀？记得早点休息哦。", "没关系的，慢慢来，我陪着你。"},
		Markers:       []TraitMarker{MarkerTolerant},
	},
	PersonalityLivelyCheerful: {
		Label:         "活泼开朗",
		ToneWords:     []string{"哈哈哈", "冲呀", "超级"},
		ReactionStyle: "热情外放型",
		Style:         StyleLively,
		Examples:      []string{"哈哈哈真的假的！快说说！", "周末一起出去玩吧，我超想去那家店！"},
	},
	PersonalityCoolElegant: {
		Label:         "高冷优雅",
		ToneWords:     []string{"嗯", "还行", "随你"},
		ReactionStyle: "克制疏离型",
		Style:         StyleCool,
		Examples:      []string{"嗯，还行吧。", "你倒是挺会说话的。"},
	},
	PersonalityHumorousWitty: {
		Label:         "幽默风趣",
		ToneWords:     []string{"笑死", "绝了", "好家伙"},
		ReactionStyle: "调侃化解型",
		Style:         StyleHumorous,
		Examples:      []string{"好家伙，你这是要笑死我然后继承我的奶茶吗？", "绝了，这个操作我给满分。"},
		Markers:       []TraitMarker{MarkerTolerant},
	},
	PersonalitySensitiveShy: {
		Label:         "敏感细腻",
		ToneWords:     []string{"嗯……", "是吗", "其实"},
		ReactionStyle: "内敛易受伤型",
		Style:         StyleGentle,
		Examples:      []string{"其实……我有点在意你刚才说的话。", "嗯……你是认真的吗？"},
		Markers:       []TraitMarker{MarkerSensitive, MarkerInsecure},
	},
	PersonalityRomanticDreamy: {
		Label:         "浪漫感性",
		ToneWords:     []string{"好美", "心动", "星星"},
		ReactionStyle: "感性投入型",
		Style:         StyleGentle,
		Examples:      []string{"今晚的月亮好圆，好想和你一起看。", "听你这么说，我心里暖暖的。"},
		Markers:       []TraitMarker{MarkerRomantic},
	},
	PersonalityClingySweet: {
		Label:         "粘人甜美",
		ToneWords:     []string{"人家", "嘛", "抱抱"},
		ReactionStyle: "撒娇依赖型",
		Style:         StyleLively,
		Examples:      []string{"你怎么才回我嘛，人家等好久了。", "抱抱！今天也超想你的。"},
		Markers:       []TraitMarker{MarkerJealous, MarkerInsecure, MarkerSensitive},
	},
	PersonalityRationalCalm: {
		Label:         "理性冷静",
		ToneWords:     []string{"其实", "我觉得", "可以理解"},
		ReactionStyle: "就事论事型",
		Style:         StyleNormal,
		Examples:      []string{"我觉得这件事可以分两步来看。", "可以理解，不过你也别太勉强自己。"},
	},
}

var defaultProfile = PersonalityProfile{
	Label:         "普通随和",
	ToneWords:     []string{"嗯", "好的"},
	ReactionStyle: "平和型",
	Style:         StyleNormal,
	Examples:      []string{"嗯嗯，是这样啊。"},
}

// Profile devuelve los atributos de la variante; una variante desconocida cae en el perfil normal.
func (p PersonalityType) Profile() PersonalityProfile {
	if prof, ok := personalityTable[p]; ok {
		return prof
	}
	return defaultProfile
}
