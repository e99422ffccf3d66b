package service

import "affinity-chat/internal/domain"

const (
	depthShallow = iota
	depthMedium
	depthDeep
)

// replyTemplates se indexa por estilo, sentimiento y profundidad (ronda <5, <15, >=15).
var replyTemplates = map[domain.ResponseStyle]map[Sentiment][3][]string{
	domain.StyleGentle: {
		SentimentPositive: {
			{"谢谢你呀，听你这么说我很开心。", "嘿嘿，你真会说话。"},
			{"和你聊天总是很舒服，今天也是。", "你这样说，我心里暖暖的。"},
			{"有你在真好，感觉每天都被认真对待着。", "我也是，越来越习惯有你在身边了。"},
		},
		SentimentNegative: {
			{"是我哪里做得不好吗？", "嗯……你是不是心情不太好？"},
			{"你这样说我有点难过，不过我愿意听你说说原因。", "没关系，有什么不开心的可以告诉我。"},
			{"我们认识这么久了，你这样说我真的会难过的。", "不管怎样，我都想先听听你的想法。"},
		},
		SentimentQuestion: {
			{"嗯，我想想怎么回答你比较好。", "你问得好认真呀。"},
			{"这个嘛，我平时会在家安安静静待着，你呢？", "好问题，我也想听听你的答案。"},
			{"你想知道的话我都愿意告诉你。", "问我这个，是想多了解我一点吗？"},
		},
		SentimentNeutral: {
			{"嗯嗯，我在听呢。", "这样啊，然后呢？"},
			{"嗯，今天过得怎么样？", "听起来还不错呀。"},
			{"好呀，你说什么我都爱听。", "嗯，在你身边就很安心。"},
		},
	},
	domain.StyleLively: {
		SentimentPositive: {
			{"哈哈哈真的吗！我超开心的！", "哇，你也太会夸人了吧！"},
			{"今天也被你逗笑了，太棒啦！", "啊啊啊我要截图保存这句话！"},
			{"跟你在一起每天都好快乐！", "你就是我的快乐源泉没错了！"},
		},
		SentimentNegative: {
			{"哼，你怎么这样说嘛。", "呜呜，好凶哦。"},
			{"喂喂，你今天吃火药了吗？", "别这样嘛，我会不开心的！"},
			{"你再这样说我真的要生气啦！", "我们和好嘛，好不好？"},
		},
		SentimentQuestion: {
			{"这个问题好有意思！", "嘿嘿你猜？"},
			{"我呀，我喜欢到处跑！你呢你呢？", "问得好，我可有好多话想说！"},
			{"只要是你问的，我都告诉你！", "你问这个，是不是想约我呀？"},
		},
		SentimentNeutral: {
			{"然后呢然后呢？", "哈哈，继续说！"},
			{"今天有什么好玩的事吗？", "嗯嗯，我在呢！"},
			{"跟你聊天怎么都不会无聊！", "你说啥我都想听！"},
		},
	},
	domain.StyleCool: {
		SentimentPositive: {
			{"嗯，还行。", "说得倒是挺好听的。"},
			{"……谢谢，我知道了。", "你今天嘴挺甜。"},
			{"嗯，我也不讨厌和你聊天。", "这句话，我记下了。"},
		},
		SentimentNegative: {
			{"随你怎么想。", "哦。"},
			{"你要是这个态度，那就先别聊了。", "没必要说话这么冲。"},
			{"我以为你会懂我的。", "……你这样我会失望的。"},
		},
		SentimentQuestion: {
			{"看书，或者一个人待着。", "你问这个做什么？"},
			{"没什么特别的，偶尔听听音乐。", "嗯……你猜。"},
			{"既然是你问，那我就告诉你吧。", "你好像对我很感兴趣。"},
		},
		SentimentNeutral: {
			{"嗯。", "然后？"},
			{"知道了。", "还有别的事吗？"},
			{"嗯，你继续说，我在听。", "难得你会跟我说这些。"},
		},
	},
	domain.StyleHumorous: {
		SentimentPositive: {
			{"好家伙，你这是要把我夸上天啊。", "笑死，这句话我收下了。"},
			{"你这么会说，是不是偷偷练过？", "绝了，今天的你格外顺眼。"},
			{"跟你聊天，我的嘴角就没下来过。", "你再夸我就要飘了啊。"},
		},
		SentimentNegative: {
			{"哎呀，杀伤力有点大。", "收到差评一条，我反省一下。"},
			{"行行行，我先去角落画个圈圈。", "你这话说的，我的玻璃心碎了一地。"},
			{"我们好歹是老朋友了，给点面子嘛。", "好吧，我认错，虽然不知道错哪了。"},
		},
		SentimentQuestion: {
			{"这个问题问得好，下次别问了。", "你猜我猜不猜？"},
			{"要我说嘛，吃饭睡觉逗你开心。", "这个问题价值一杯奶茶。"},
			{"你问的问题越来越深刻了。", "好问题，我们边吃边聊？"},
		},
		SentimentNeutral: {
			{"嗯哼，然后呢？", "我在，我在。"},
			{"今天也是平平无奇的一天呢。", "听起来像是一个故事的开头。"},
			{"你说话我都当段子听。", "行，这个我记小本本上了。"},
		},
	},
	domain.StyleNormal: {
		SentimentPositive: {
			{"谢谢，我也挺开心的。", "嗯，听你这么说很高兴。"},
			{"和你聊天挺舒服的。", "你这么说我挺感动的。"},
			{"认识你是件挺好的事。", "我也越来越喜欢和你聊天了。"},
		},
		SentimentNegative: {
			{"你是不是遇到什么事了？", "嗯……这样说不太好吧。"},
			{"我们可以好好说的。", "你这么说我有点不舒服。"},
			{"我希望我们之间能坦诚一点。", "有什么问题我们一起解决。"},
		},
		SentimentQuestion: {
			{"嗯，让我想想。", "这个嘛，看情况吧。"},
			{"我平时挺普通的，上班下班，周末放松一下。", "你为什么想知道这个？"},
			{"这个我可以慢慢告诉你。", "你问得挺仔细的。"},
		},
		SentimentNeutral: {
			{"嗯，是这样啊。", "好的。"},
			{"然后呢？", "听起来还不错。"},
			{"嗯，我明白你的意思。", "好，你继续说。"},
		},
	},
}

// hobbyTemplates se usan cuando el mensaje toca un hobby del personaje; %s es el hobby.
var hobbyTemplates = map[domain.ResponseStyle][]string{
	domain.StyleGentle:   {"说到%s，我也很喜欢呢，下次可以一起呀。", "你也喜欢%s吗？好巧呀。"},
	domain.StyleLively:   {"%s！！我超爱的，快跟我聊聊！", "天哪你也喜欢%s？我们简直是知己！"},
	domain.StyleCool:     {"%s……嗯，我也还算喜欢。", "你也懂%s？有点意思。"},
	domain.StyleHumorous: {"%s？那你可算问对人了。", "聊%s我能跟你聊到天亮。"},
	domain.StyleNormal:   {"我平时也挺喜欢%s的。", "%s啊，这个我熟。"},
}

// reasonBuckets mapea la magnitud del delta a frases de motivo.
var reasonBuckets = []struct {
	min, max int
	phrases  []string
}{
	{6, 10, []string{"心跳漏了一拍", "被你打动了", "好感大涨"}},
	{3, 5, []string{"聊得很开心", "觉得你很贴心", "被你逗笑了"}},
	{1, 2, []string{"有点好感", "感觉还不错"}},
	{0, 0, []string{"平淡的对话", "没什么感觉"}},
	{-2, -1, []string{"有点不爽", "感觉被敷衍了"}},
	{-5, -3, []string{"不太开心", "被你的话刺到了"}},
	{-10, -6, []string{"很受伤", "非常失望"}},
}

var styleEmojis = map[domain.ResponseStyle]string{
	domain.StyleGentle:   "😊",
	domain.StyleLively:   "😆",
	domain.StyleCool:     "🙂",
	domain.StyleHumorous: "🤣",
	domain.StyleNormal:   "🙂",
}

var specialEventReplies = map[SpecialEvent]map[domain.ResponseStyle][]string{
	EventBreakup: {
		domain.StyleGentle:   {"我想了很久，也许我们真的不合适……以后照顾好自己。"},
		domain.StyleLively:   {"我不想再假装开心了，我们就到这里吧。"},
		domain.StyleCool:     {"到此为止吧，别再联系了。"},
		domain.StyleHumorous: {"这次不开玩笑了，我们还是算了吧。"},
		domain.StyleNormal:   {"我觉得我们不太合适，就这样吧。"},
	},
	EventAngry: {
		domain.StyleGentle:   {"你最近说的话真的让我很难过，我需要冷静一下。"},
		domain.StyleLively:   {"我真的生气了！你都不在乎我的感受！"},
		domain.StyleCool:     {"我不想说话了。"},
		domain.StyleHumorous: {"这次我是真的笑不出来了。"},
		domain.StyleNormal:   {"你一直这样说话，我真的很生气。"},
	},
}

var (
	friendTopicKeywords    = []string{"朋友", "闺蜜", "同事", "兄弟", "前任", "学姐", "学长", "女生", "男生"}
	sharedActivityKeywords = []string{"一起", "陪你", "陪我", "约你", "见面", "带你"}
)
