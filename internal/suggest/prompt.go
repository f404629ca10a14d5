package suggest

import (
	"fmt"
	"strings"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// buildPrompt lists the candidate tags with their parent category and
// description so the model chooses from real titles instead of
// inventing its own.
func buildPrompt(message string, leaves []appmodels.Tag) string {
	var list strings.Builder
	for _, tag := range leaves {
		list.WriteString("- ")
		list.WriteString(tag.Title)
		if tag.ParentTitle != "" {
			fmt.Fprintf(&list, " (подкатегория: %s)", tag.ParentTitle)
		}
		if tag.Description != "" {
			list.WriteString(" - ")
			list.WriteString(tag.Description)
		}
		list.WriteByte('\n')
	}

	return fmt.Sprintf(`Проанализируй сообщение пользователя и определи наиболее подходящие теги (категории расхода) из предоставленного списка.

Сообщение пользователя: "%s"

Доступные теги:
%s
Инструкции:
1. Выбери до %d наиболее подходящих тегов, лучший первым, через запятую
2. Если подходящих тегов нет, верни "%s"
3. Используй только названия тегов из списка, не придумывай новые
4. Не добавляй дополнительных объяснений

Ответ:`, message, list.String(), maxSuggestedTags, Undetermined)
}
