package novel

import (
	"context"
	"fmt"
	"strings"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/domain/entity"
	apperrors "collab-novel-api/pkg/errors"
)

// GenerateContent 对单条输入直接生成文本
func (s *Service) GenerateContent(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", inputRequired()
	}
	content, err := s.generator.Generate(ctx, input)
	if err != nil {
		return "", apperrors.ErrGenerationFailed.WithError(err)
	}
	return content, nil
}

// ChapterCommand 章节生成参数
type ChapterCommand struct {
	Title           string
	PreviousContent string
	UserPrompts     string
}

// BuildChapterPrompt 构造章节生成提示词
func BuildChapterPrompt(cmd ChapterCommand) string {
	return fmt.Sprintf("Title: %s\nPrevious Content: %s\nUser Prompts: %s\nGenerate the next chapter content:",
		strings.TrimSpace(cmd.Title), strings.TrimSpace(cmd.PreviousContent), strings.TrimSpace(cmd.UserPrompts))
}

// GenerateChapter 按标题、前文与用户提示生成章节草稿
func (s *Service) GenerateChapter(ctx context.Context, cmd ChapterCommand) (*entity.ChapterDraft, error) {
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, apperrors.Validation("title", "Missing required fields")
	}

	content, err := s.generator.Generate(ctx, BuildChapterPrompt(cmd),
		generation.WithPurpose(generation.PurposeChapter),
		generation.WithMaxTokens(s.chapterMaxTokens),
	)
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}
	return entity.NewChapterDraft(strings.TrimSpace(cmd.Title), content), nil
}
