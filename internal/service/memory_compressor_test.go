package service

import (
	"strings"
	"testing"
	"time"

	"affinity-chat/internal/domain"
)

func TestMemoryCompressorCompress(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		{Sender: domain.SenderUser, Content: "你最近看了什么电影？", CreatedAt: day1},
		{Sender: domain.SenderPersona, Content: "看了一部新片。", CreatedAt: day1.Add(time.Minute)},
		{Sender: domain.SenderUser, Content: "周末去吃火锅吧", CreatedAt: day3},
	}

	s := DefaultMemoryCompressor.Compress(msgs, 64, "林晚")
	if s.DurationDays != 3 {
		t.Fatalf("expected 3 days, got %d", s.DurationDays)
	}
	if len(s.Topics) != 2 || s.Topics[0] != TopicMovie || s.Topics[1] != TopicFood {
		t.Fatalf("unexpected topics %v", s.Topics)
	}
	if s.Affinity != 64 || !s.CoveredUntil.Equal(day3) {
		t.Fatalf("unexpected summary %+v", s)
	}
	for _, want := range []string{"林晚", "3天", "电影", "64", "暧昧心动"} {
		if !strings.Contains(s.Narrative, want) {
			t.Fatalf("expected narrative to contain %q, got %q", want, s.Narrative)
		}
	}
}

func TestMemoryCompressorDurationDays(t *testing.T) {
	base := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		span time.Duration
		want int
	}{
		{"mismo instante", 0, 1},
		{"menos de un dia", 23 * time.Hour, 1},
		{"tres fechas en menos de 48h", 26 * time.Hour, 2},
		{"justo 48h", 48 * time.Hour, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgs := []domain.Message{
				{Sender: domain.SenderUser, Content: "嗯", CreatedAt: base.Add(tc.span)},
				{Sender: domain.SenderPersona, Content: "嗯", CreatedAt: base},
			}
			if got := DefaultMemoryCompressor.Compress(msgs, 50, "林晚").DurationDays; got != tc.want {
				t.Fatalf("expected %d days, got %d", tc.want, got)
			}
		})
	}
}

func TestMemoryCompressorEmpty(t *testing.T) {
	s := DefaultMemoryCompressor.Compress(nil, 50, "林晚")
	if s.DurationDays != 1 || len(s.Topics) != 0 || !s.CoveredUntil.IsZero() {
		t.Fatalf("unexpected summary for empty history %+v", s)
	}
}

func TestMemoryCompressorShouldCompress(t *testing.T) {
	c := DefaultMemoryCompressor
	cases := []struct {
		round, interval int
		want            bool
	}{
		{20, 20, true},
		{19, 20, false},
		{0, 20, false},
		{40, 20, true},
		{20, 0, true},
		{10, 5, true},
	}
	for _, tc := range cases {
		if got := c.ShouldCompress(tc.round, tc.interval); got != tc.want {
			t.Fatalf("ShouldCompress(%d,%d) = %v, want %v", tc.round, tc.interval, got, tc.want)
		}
	}
}
