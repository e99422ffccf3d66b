package service

import (
	"strings"
	"testing"

	"affinity-chat/internal/domain"
)

func TestTraitRuleEngineGenerate(t *testing.T) {
	t.Run("pregunta a personaje frio", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("你平时喜欢做什么", testPersona(domain.PersonalityCoolElegant, domain.HobbyMovies), 0, 50, nil)
		if out.Sentiment != SentimentQuestion {
			t.Fatalf("expected question, got %s", out.Sentiment)
		}
		if out.Delta < QuestionDeltaRange.Min || out.Delta > QuestionDeltaRange.Max {
			t.Fatalf("expected delta in question range, got %d", out.Delta)
		}
		if !strings.HasPrefix(out.Text, "看书，或者一个人待着。") {
			t.Fatalf("expected cool template, got %q", out.Text)
		}
		tag, ok := DefaultAffinityTagCodec.Decode(out.Text)
		if !ok || tag.Value != out.Delta {
			t.Fatalf("expected embedded tag with delta %d, got %+v", out.Delta, tag)
		}
	})

	t.Run("sensible ante negativo", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("你好烦", testPersona(domain.PersonalitySensitiveShy), 0, 50, nil)
		if out.Delta != -10 {
			t.Fatalf("expected -10, got %d", out.Delta)
		}
		if !strings.HasPrefix(out.Text, "你这么说，我真的有点受伤……") {
			t.Fatalf("expected hurt prefix, got %q", out.Text)
		}
		if !out.IsPeak {
			t.Fatalf("expected |delta|>=5 to be a peak")
		}
	})

	t.Run("tolerante trunca hacia cero", func(t *testing.T) {
		p := testPersona(domain.PersonalityGentleCaring)
		if out := NewTraitRuleEngine(nil, constRand{0}).Generate("你好烦", p, 0, 50, nil); out.Delta != -4 {
			t.Fatalf("expected -4, got %d", out.Delta)
		}
		if out := NewTraitRuleEngine(nil, constRand{1}).Generate("你好烦", p, 0, 50, nil); out.Delta != -3 {
			t.Fatalf("expected -3, got %d", out.Delta)
		}
	})

	t.Run("afinidad alta frena la subida", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{6})
		out := e.Generate("哈哈你真可爱", testPersona(domain.PersonalityLivelyCheerful), 0, 85, nil)
		if out.Delta != 4 {
			t.Fatalf("expected floor(8*0.6)=4, got %d", out.Delta)
		}
	})

	t.Run("afinidad baja castiga mas", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{6})
		out := e.Generate("你好烦", testPersona(domain.PersonalityRationalCalm), 0, 15, nil)
		if out.Delta != -4 {
			t.Fatalf("expected -2-2=-4, got %d", out.Delta)
		}
	})

	t.Run("actividad compartida", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("周末一起去吃火锅吗", testPersona(domain.PersonalityRationalCalm), 0, 50, nil)
		if out.Delta != 3 {
			t.Fatalf("expected 1+2=3, got %d", out.Delta)
		}
	})

	t.Run("plantilla de hobby", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("最近有什么好看的电影", testPersona(domain.PersonalityCoolElegant, domain.HobbyMovies), 3, 50, nil)
		if !strings.Contains(out.Text, "看电影") {
			t.Fatalf("expected hobby template, got %q", out.Text)
		}
	})

	t.Run("celos", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("我今天和朋友出去了", testPersona(domain.PersonalityClingySweet), 0, 50, nil)
		if !strings.Contains(out.Text, "那个人是谁呀") {
			t.Fatalf("expected jealous suffix, got %q", out.Text)
		}
	})

	t.Run("romantico", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("谢谢你", testPersona(domain.PersonalityRomanticDreamy), 0, 50, nil)
		if !strings.Contains(out.Text, "感觉连今天的风都是甜的。") {
			t.Fatalf("expected romantic suffix, got %q", out.Text)
		}
	})

	t.Run("groserias y emoji", func(t *testing.T) {
		p := testPersona(domain.PersonalityLivelyCheerful)
		p.Traits.Profanity = domain.ProfanityNormal
		p.Traits.Emoji = domain.EmojiFrequent
		out := NewTraitRuleEngine(nil, constRand{0}).Generate("你好烦", p, 0, 50, nil)
		visible := DefaultAffinityTagCodec.StripAll(out.Text)
		if !strings.HasPrefix(visible, "啧，") || !strings.HasSuffix(visible, styleEmojis[domain.StyleLively]) {
			t.Fatalf("unexpected rewrite %q", visible)
		}
	})

	t.Run("evita repetir la ultima respuesta", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		history := []domain.Message{{Sender: domain.SenderPersona, Content: "嗯。[FAVOR:-1:有点不爽]"}}
		out := e.Generate("嗯", testPersona(domain.PersonalityCoolElegant), 0, 50, history)
		if !strings.HasPrefix(out.Text, "然后？") {
			t.Fatalf("expected the alternative template, got %q", out.Text)
		}
	})

	t.Run("motivo por magnitud", func(t *testing.T) {
		e := NewTraitRuleEngine(nil, constRand{0})
		out := e.Generate("嗯", testPersona(domain.PersonalityRationalCalm), 0, 50, nil)
		if out.Delta != -1 || out.Reason != "有点不爽" {
			t.Fatalf("unexpected delta/reason %d %q", out.Delta, out.Reason)
		}
	})
}

func TestTraitRuleEngineWithoutRand(t *testing.T) {
	e := NewTraitRuleEngine(nil, nil)
	out := e.Generate("嗯", testPersona(domain.PersonalityCoolElegant), 0, 50, nil)
	if out.Delta != NeutralDeltaRange.Min || out.IsPeak {
		t.Fatalf("expected deterministic low end without rand, got %+v", out)
	}
}

func negativeMsg(delta int) domain.Message {
	return domain.Message{Sender: domain.SenderPersona, AffinityDelta: &delta}
}

func TestCheckSpecialEvent(t *testing.T) {
	e := NewTraitRuleEngine(nil, constRand{0})
	sensitive := testPersona(domain.PersonalitySensitiveShy).Traits
	calm := testPersona(domain.PersonalityRationalCalm).Traits

	t.Run("ruptura", func(t *testing.T) {
		ev := e.CheckSpecialEvent(calm, 10, nil)
		if ev == nil || *ev != EventBreakup {
			t.Fatalf("expected breakup, got %v", ev)
		}
	})

	t.Run("enojo", func(t *testing.T) {
		recent := []domain.Message{negativeMsg(-2), {Sender: domain.SenderUser}, negativeMsg(-3), negativeMsg(-1)}
		ev := e.CheckSpecialEvent(sensitive, 40, recent)
		if ev == nil || *ev != EventAngry {
			t.Fatalf("expected angry, got %v", ev)
		}
		if ev := e.CheckSpecialEvent(calm, 40, recent); ev != nil {
			t.Fatalf("expected no event for non-sensitive persona, got %v", *ev)
		}
	})

	t.Run("fuera de ventana", func(t *testing.T) {
		recent := []domain.Message{negativeMsg(-2), negativeMsg(-3), negativeMsg(-1)}
		for i := 0; i < 6; i++ {
			recent = append(recent, negativeMsg(1))
		}
		if ev := e.CheckSpecialEvent(sensitive, 40, recent); ev != nil {
			t.Fatalf("expected old negatives ignored, got %v", *ev)
		}
	})
}

func TestSpecialEventReply(t *testing.T) {
	e := NewTraitRuleEngine(nil, constRand{0})
	if got := e.SpecialEventReply(EventBreakup, testPersona(domain.PersonalityCoolElegant).Traits); got != "到此为止吧，别再联系了。" {
		t.Fatalf("unexpected breakup reply %q", got)
	}
	if got := e.SpecialEventReply(EventAngry, testPersona("UNKNOWN").Traits); got == "" {
		t.Fatalf("expected fallback to normal style")
	}
}
