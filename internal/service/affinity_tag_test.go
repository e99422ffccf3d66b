package service

import (
	"strings"
	"testing"
)

func TestAffinityTagRoundTrip(t *testing.T) {
	codec := DefaultAffinityTagCodec
	cases := []AffinityTag{
		{Value: 3, Reason: "聊到爱好"},
		{Value: -7, Reason: "被冒犯了", IsPeak: true},
		{Value: 0, Reason: "平淡的对话", IsSlow: true},
		{Value: 10, Reason: ""},
	}
	for _, tc := range cases {
		raw := codec.Encode(tc.Value, tc.Reason, tc.IsPeak, tc.IsSlow)
		got, ok := codec.Decode("回复内容" + raw)
		if !ok || got != tc {
			t.Fatalf("round trip of %+v via %q gave %+v (ok=%v)", tc, raw, got, ok)
		}
	}
}

func TestAffinityTagDecode(t *testing.T) {
	codec := DefaultAffinityTagCodec

	t.Run("sin etiqueta", func(t *testing.T) {
		if _, ok := codec.Decode("hola"); ok {
			t.Fatalf("expected no tag")
		}
	})

	t.Run("digitos vacios valen cero", func(t *testing.T) {
		tag, ok := codec.Decode("嗯[FAVOR::x]")
		if !ok || tag.Value != 0 || tag.Reason != "x" {
			t.Fatalf("unexpected tag %+v ok=%v", tag, ok)
		}
	})

	t.Run("pico tiene precedencia al codificar", func(t *testing.T) {
		if raw := codec.Encode(5, "r", true, true); !strings.HasPrefix(raw, "[FAVOR_PEAK:+5") {
			t.Fatalf("expected peak suffix, got %q", raw)
		}
	})

	t.Run("primera etiqueta gana", func(t *testing.T) {
		tag, _ := codec.Decode("[FAVOR_SLOW:-2:a] y [FAVOR:+9:b]")
		if tag.Value != -2 || !tag.IsSlow {
			t.Fatalf("expected first tag, got %+v", tag)
		}
	})

	t.Run("motivo sin corchetes", func(t *testing.T) {
		raw := codec.Encode(1, "a]b", false, false)
		if raw != "[FAVOR:+1:ab]" {
			t.Fatalf("unexpected encoding %q", raw)
		}
	})
}

func TestAffinityTagStrip(t *testing.T) {
	codec := DefaultAffinityTagCodec
	cases := map[string]string{
		"嗯。[FAVOR:+1:x]":                  "嗯。",
		"[FAVOR_PEAK:-5:y] 好吧":             "好吧",
		"[FA[FAVOR:+1:x]VOR:+2:y]":         "",
		"没有标签":                            "没有标签",
		"a[FAVOR:+1:x]b[FAVOR_SLOW:+0:z]c": "abc",
	}
	for in, want := range cases {
		got := codec.Strip(in)
		if got != want {
			t.Fatalf("Strip(%q) = %q, want %q", in, got, want)
		}
		if again := codec.Strip(got); again != got {
			t.Fatalf("Strip not idempotent for %q: %q", in, again)
		}
	}
}

func TestOptionsAndRadarTags(t *testing.T) {
	codec := DefaultAffinityTagCodec

	raw := "你想聊什么？" + codec.EncodeOptions([4]string{"看电影", "去散步", "吃火锅", "a|b"})
	opts, ok := codec.DecodeOptions(raw)
	if !ok || len(opts) != 4 || opts[0] != "看电影" || opts[3] != "ab" {
		t.Fatalf("unexpected options %v ok=%v", opts, ok)
	}

	radar := RadarTag{Type: "关心", Content: "问她累不累", Suggestion: "继续保持"}
	raw += codec.EncodeRadar(radar) + codec.Encode(2, "被关心", false, false)
	got, ok := codec.DecodeRadar(raw)
	if !ok || got != radar {
		t.Fatalf("unexpected radar %+v ok=%v", got, ok)
	}

	if visible := codec.StripAll(raw); visible != "你想聊什么？" {
		t.Fatalf("expected only visible text, got %q", visible)
	}
}
