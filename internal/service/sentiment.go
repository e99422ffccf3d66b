package service

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentQuestion Sentiment = "question"
	SentimentNeutral  Sentiment = "neutral"
)

// SentimentClassifier es la estrategia enchufable de clasificacion de un mensaje.
type SentimentClassifier interface {
	Classify(utterance string) Sentiment
}

// KeywordClassifier clasifica por subcadenas en orden fijo: positivo, negativo, pregunta, neutral.
// Es simplista a proposito.
type KeywordClassifier struct {
	Positive []string
	Negative []string
	Question []string
}

var defaultPositiveKeywords = []string{
	"开心", "高兴", "哈哈", "谢谢", "爱你", "想你", "喜欢你", "好棒", "真棒", "厉害",
	"好看", "漂亮", "可爱", "真好", "太好了", "温柔", "抱抱", "么么", "❤",
	"thank", "love you", "haha", "miss you",
}

var defaultNegativeKeywords = []string{
	"讨厌", "烦", "滚", "无聊", "生气", "难过", "失望", "算了", "不想理", "闭嘴",
	"傻", "笨", "丑", "呵呵", "随便你", "别烦", "恶心",
	"hate", "boring", "shut up", "stupid",
}

var defaultQuestionKeywords = []string{
	"吗", "呢", "？", "?", "什么", "怎么", "为什么", "哪", "谁", "几点", "多少", "是不是", "要不要",
	"why", "what", "how",
}

// NewKeywordClassifier arma el clasificador con las listas por defecto.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{
		Positive: defaultPositiveKeywords,
		Negative: defaultNegativeKeywords,
		Question: defaultQuestionKeywords,
	}
}

func (k KeywordClassifier) Classify(utterance string) Sentiment {
	msg := strings.ToLower(strings.TrimSpace(utterance))
	if msg == "" {
		return SentimentNeutral
	}
	switch {
	case containsAny(msg, k.Positive):
		return SentimentPositive
	case containsAny(msg, k.Negative):
		return SentimentNegative
	case containsAny(msg, k.Question):
		return SentimentQuestion
	default:
		return SentimentNeutral
	}
}

func containsAny(s string, list []string) bool {
	for _, x := range list {
		if x != "" && strings.Contains(s, strings.ToLower(x)) {
			return true
		}
	}
	return false
}
