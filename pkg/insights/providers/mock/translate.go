package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
)

// phrases are known translations keyed by "lower(text)|source|target".
var phrases = map[string]string{
	"안녕하세요|ko|en":          "Hello",
	"반갑습니다|ko|en":          "Nice to meet you",
	"감사합니다|ko|en":          "Thank you",
	"네|ko|en":              "Yes",
	"아니요|ko|en":            "No",
	"좋습니다|ko|en":           "Good",
	"알겠습니다|ko|en":          "I understand",
	"미팅을 시작하겠습니다|ko|en":    "Let's start the meeting",
	"오늘 안건은|ko|en":         "Today's agenda is",
	"질문 있으신가요|ko|en":       "Do you have any questions?",
	"다음 주에 다시 이야기합시다|ko|en": "Let's talk again next week",

	"hello|en|ko":                     "안녕하세요",
	"nice to meet you|en|ko":          "반갑습니다",
	"thank you|en|ko":                 "감사합니다",
	"yes|en|ko":                       "네",
	"no|en|ko":                        "아니요",
	"good|en|ko":                      "좋습니다",
	"i understand|en|ko":              "알겠습니다",
	"let's start the meeting|en|ko":   "미팅을 시작하겠습니다",
	"today's agenda is|en|ko":         "오늘 안건은",
	"do you have any questions|en|ko": "질문 있으신가요?",
	"let's talk again next week|en|ko": "다음 주에 다시 이야기합시다",

	"안녕하세요|ko|ja":       "こんにちは",
	"감사합니다|ko|ja":       "ありがとうございます",
	"미팅을 시작하겠습니다|ko|ja": "会議を始めましょう",
	"こんにちは|ja|ko":       "안녕하세요",
	"ありがとうございます|ja|ko":  "감사합니다",
}

// koreanWords is applied in order, so longer stems come first where they
// overlap.
var koreanWords = []struct{ ko, en string }{
	{"안녕", "Hello"},
	{"네", "Yes"},
	{"아니", "No"},
	{"감사", "Thank"},
	{"좋", "Good"},
	{"나쁘", "Bad"},
	{"미팅", "meeting"},
	{"회의", "meeting"},
	{"질문", "question"},
	{"답변", "answer"},
	{"프로젝트", "project"},
	{"일정", "schedule"},
	{"진행", "progress"},
	{"완료", "complete"},
	{"시작", "start"},
	{"종료", "end"},
	{"오늘", "today"},
	{"내일", "tomorrow"},
	{"어제", "yesterday"},
}

// Translator produces recognizable placeholder translations without any
// external service.
type Translator struct{}

func NewTranslator() *Translator {
	return &Translator{}
}

func (t *Translator) Mode() insights.TranslationMode {
	return insights.ModeMock
}

func (t *Translator) Translate(_ context.Context, req *insights.TranslationRequest) (string, error) {
	if req.SourceLang == req.TargetLang {
		return req.Text, nil
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	key := fmt.Sprintf("%s|%s|%s", strings.ToLower(strings.TrimSpace(req.Text)), req.SourceLang, req.TargetLang)
	if p, ok := phrases[key]; ok {
		return p, nil
	}

	return simulate(annotate(req.Text, req.Glossary), req.SourceLang, req.TargetLang), nil
}

// annotate marks glossary terms as "term(meaning)".
func annotate(text string, glossary []insights.GlossaryTerm) string {
	for _, g := range glossary {
		if g.Term == "" || g.Meaning == "" || !strings.Contains(text, g.Term) {
			continue
		}
		text = strings.ReplaceAll(text, g.Term, fmt.Sprintf("%s(%s)", g.Term, g.Meaning))
	}
	return text
}

func simulate(text, source, target string) string {
	flag := languages.Flag(target)
	switch {
	case source == "ko" && target == "en":
		for _, w := range koreanWords {
			text = strings.ReplaceAll(text, w.ko, w.en)
		}
		return fmt.Sprintf("%s [Translation] %s", flag, text)
	case source == "en" && target == "ko":
		return fmt.Sprintf("%s [번역] %s", flag, text)
	}
	return fmt.Sprintf("%s [%s] %s", flag, languages.Name(target), text)
}
