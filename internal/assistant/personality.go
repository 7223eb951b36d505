package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/semantic"
)

const (
	sparkle        = "✨"
	detailedSuffix = "Pour une explication détaillée, consultez la documentation du module ou demandez-moi un exemple pas à pas."
)

var informalGreeting = regexp.MustCompile(`(?i)^(salut|coucou|hey)\b`)

// applyPersonality shapes message with the tone, then length, then
// structure of p.
func applyPersonality(message string, p learning.Personality) string {
	message = applyTone(message, p.Tone)
	message = applyLength(message, p.ResponseLength)
	return applyStructure(message, p.Style)
}

func applyTone(message string, tone learning.Tone) string {
	switch tone {
	case learning.ToneFormal:
		message = semantic.StripEmoji(message)
		message = strings.ReplaceAll(message, " !", ".")
		message = strings.ReplaceAll(message, "!", ".")
		message = informalGreeting.ReplaceAllString(message, "Bonjour")
	case learning.ToneEnthusiastic:
		if !strings.Contains(message, "!") {
			if strings.HasSuffix(message, ".") {
				message = strings.TrimSuffix(message, ".") + " !"
			} else {
				message += " !"
			}
		}
		if !strings.HasPrefix(message, sparkle) {
			message = sparkle + " " + message
		}
	}
	return message
}

func applyLength(message string, length learning.Length) string {
	switch length {
	case learning.LengthShort:
		message = semantic.FirstSentences(message, 2)
	case learning.LengthLong:
		if !strings.Contains(message, detailedSuffix) {
			message += "\n\n" + detailedSuffix
		}
	}
	return message
}

func applyStructure(message string, style learning.Style) string {
	switch style {
	case learning.StyleStepByStep:
		if semantic.HasSteps(message) {
			return message
		}
		sentences := semantic.Sentences(message)
		if len(sentences) < 2 {
			return message
		}
		lines := make([]string, len(sentences))
		for i, s := range sentences {
			lines[i] = fmt.Sprintf("%d. %s", i+1, s)
		}
		return strings.Join(lines, "\n")
	}
	return message
}
