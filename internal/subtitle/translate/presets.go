package translate

import (
	"fmt"
	"strings"
)

// Presets lists the accepted preset names.
var Presets = []string{"anime", "movie", "documentary", "custom"}

// GetSystemPrompt returns the translation system prompt for a given preset
func GetSystemPrompt(preset, sourceLang, targetLang string) string {
	base := fmt.Sprintf(
		"You are a professional subtitle translator. Translate one complete sentence of subtitle dialogue from %s to %s. "+
			"The sentence was assembled from several consecutive captions. "+
			"Keep the translation concise and natural for subtitle display. "+
			"Respond with ONLY the translated sentence on a single line, without quotes, notes or explanations.",
		langName(sourceLang), langName(targetLang),
	)

	switch preset {
	case "anime":
		return base + "\n\n" +
			"Additional guidelines for anime translation:\n" +
			"- Use casual, natural speech patterns appropriate for anime dialogue\n" +
			"- Preserve Japanese honorifics (-san, -kun, -chan, -senpai, -sensei)\n" +
			"- Keep character name consistency\n" +
			"- Match the emotional tone (excited, serious, comedic)"

	case "movie":
		return base + "\n\n" +
			"Additional guidelines for movie/drama translation:\n" +
			"- Use natural conversational style appropriate for the genre\n" +
			"- Preserve cultural nuances and idioms with equivalent expressions\n" +
			"- Maintain formal/informal register matching the original dialogue"

	case "documentary":
		return base + "\n\n" +
			"Additional guidelines for documentary translation:\n" +
			"- Use formal, precise language\n" +
			"- Preserve all technical terminology with accurate translations\n" +
			"- Keep numbers, dates, and measurements accurate"

	default:
		return base
	}
}

// BuildSystemPrompt applies the custom prompt on top of the preset prompt.
func BuildSystemPrompt(opts TranslateOptions) string {
	prompt := GetSystemPrompt(opts.Preset, opts.SourceLang, opts.TargetLang)
	if opts.Preset == "custom" && opts.CustomPrompt != "" {
		prompt += "\n\nUser instructions: " + opts.CustomPrompt
	}
	return prompt
}

// cleanModelOutput strips the wrapping LLMs like to add around a single line.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if n := len([]rune(s)); n >= 2 {
		for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"「", "」"}} {
			if strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
				s = strings.TrimSuffix(strings.TrimPrefix(s, q[0]), q[1])
				break
			}
		}
	}
	// The reflow engine expects one line per sentence.
	return strings.Join(strings.Fields(s), " ")
}

func langName(code string) string {
	names := map[string]string{
		"ko":   "Korean",
		"en":   "English",
		"ja":   "Japanese",
		"zh":   "Chinese",
		"es":   "Spanish",
		"fr":   "French",
		"de":   "German",
		"pt":   "Portuguese",
		"it":   "Italian",
		"ru":   "Russian",
		"ar":   "Arabic",
		"hi":   "Hindi",
		"th":   "Thai",
		"vi":   "Vietnamese",
		"id":   "Indonesian",
		"auto": "auto-detected language",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
