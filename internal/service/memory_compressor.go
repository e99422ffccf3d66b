package service

import (
	"fmt"
	"strings"
	"time"

	"affinity-chat/internal/domain"
)

const DefaultMemoryInterval = 20

const (
	TopicMovie  = "电影"
	TopicMusic  = "音乐"
	TopicTravel = "旅行"
	TopicGames  = "游戏"
	TopicWork   = "工作"
	TopicFood   = "美食"
	TopicPets   = "宠物"
	TopicSports = "运动"
	TopicStudy  = "学习"
	TopicFamily = "家人"
)

// topicDictionary conserva el orden para que los temas salgan siempre igual.
var topicDictionary = []struct {
	label    string
	keywords []string
}{
	{TopicMovie, []string{"电影", "影院", "看片", "新片"}},
	{TopicMusic, []string{"音乐", "歌", "演唱会"}},
	{TopicTravel, []string{"旅行", "旅游", "机票", "出去玩"}},
	{TopicGames, []string{"游戏", "开黑", "上分"}},
	{TopicWork, []string{"工作", "上班", "加班", "老板"}},
	{TopicFood, []string{"美食", "好吃", "餐厅", "火锅", "奶茶"}},
	{TopicPets, []string{"宠物", "猫", "狗"}},
	{TopicSports, []string{"运动", "健身", "跑步"}},
	{TopicStudy, []string{"学习", "考试", "论文", "上课"}},
	{TopicFamily, []string{"家人", "爸爸", "妈妈", "爸妈"}},
}

// MemoryCompressor resume historial descartado en un artefacto estructurado.
type MemoryCompressor struct{}

var DefaultMemoryCompressor = MemoryCompressor{}

// Compress extrae temas por diccionario y calcula los dias transcurridos (piso + 1, minimo 1).
func (MemoryCompressor) Compress(messages []domain.Message, affinity int, personaName string) domain.MemorySummary {
	topics := extractTopics(messages)
	days := 1
	var covered time.Time
	if len(messages) > 0 {
		first, last := messages[0].CreatedAt, messages[0].CreatedAt
		for _, m := range messages[1:] {
			if m.CreatedAt.Before(first) {
				first = m.CreatedAt
			}
			if m.CreatedAt.After(last) {
				last = m.CreatedAt
			}
		}
		days = int(last.Sub(first)/(24*time.Hour)) + 1
		if days < 1 {
			days = 1
		}
		covered = last
	}

	return domain.MemorySummary{
		DurationDays: days,
		Topics:       topics,
		Affinity:     affinity,
		Narrative:    narrativeSentence(personaName, days, topics, affinity),
		CoveredUntil: covered,
	}
}

// ShouldCompress es true exactamente cuando round > 0 y round % interval == 0.
func (MemoryCompressor) ShouldCompress(round, interval int) bool {
	if interval <= 0 {
		interval = DefaultMemoryInterval
	}
	return round > 0 && round%interval == 0
}

func extractTopics(messages []domain.Message) []string {
	topics := []string{}
	for _, t := range topicDictionary {
		if topicMentioned(messages, t.keywords) {
			topics = append(topics, t.label)
		}
	}
	return topics
}

func topicMentioned(messages []domain.Message, keywords []string) bool {
	for _, m := range messages {
		if containsAny(strings.ToLower(m.Content), keywords) {
			return true
		}
	}
	return false
}

func narrativeSentence(name string, days int, topics []string, affinity int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("你和%s已经聊了%d天", name, days))
	if len(topics) > 0 {
		sb.WriteString("，聊过" + strings.Join(topics, "、") + "等话题")
	}
	sb.WriteString(fmt.Sprintf("，目前%s对你的好感度是%d（%s）。", name, affinity, affinityBand(affinity).label))
	return sb.String()
}
