package mock

import (
	"context"
	"fmt"

	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
)

// Summarizer returns a fixed template, Korean for "ko" and English for
// everything else.
type Summarizer struct{}

func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

func (s *Summarizer) Mode() insights.TranslationMode {
	return insights.ModeMock
}

func (s *Summarizer) Summarize(_ context.Context, transcript, lang string) (*insights.SummaryResult, error) {
	name := languages.Name(lang)
	if lang == "ko" {
		if transcript == "" {
			return &insights.SummaryResult{Summary: "미팅 내용이 없습니다.", Decisions: "결정 사항 없음", ActionItems: "액션 아이템 없음"}, nil
		}
		return &insights.SummaryResult{
			Summary:     fmt.Sprintf("[%s 요약]\n\n이 미팅에서는 주요 안건에 대해 논의했습니다. 참가자들은 적극적으로 의견을 교환했으며, 구체적인 실행 계획을 수립했습니다.", name),
			Decisions:   "• 프로젝트 일정 확정\n• 역할 분담 완료\n• 다음 미팅 일정 합의",
			ActionItems: "• 화자 1: 기획서 작성 (D+3)\n• 화자 2: 리소스 검토 (D+5)\n• 전체: 다음 주 월요일 팔로업 미팅",
		}, nil
	}

	if transcript == "" {
		return &insights.SummaryResult{Summary: "No meeting content.", Decisions: "No decisions", ActionItems: "No action items"}, nil
	}
	return &insights.SummaryResult{
		Summary:     fmt.Sprintf("[%s Summary]\n\nThis meeting covered key agenda items. Participants actively exchanged opinions and established concrete action plans.", name),
		Decisions:   "• Project schedule confirmed\n• Role assignments completed\n• Next meeting date agreed",
		ActionItems: "• Speaker 1: Draft proposal (D+3)\n• Speaker 2: Resource review (D+5)\n• All: Follow-up meeting next Monday",
	}, nil
}
