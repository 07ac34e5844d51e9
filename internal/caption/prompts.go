package caption

import "github.com/petos-app/petos/internal/models"

// Prompts instruct the model, they are not enforced locally: the returned
// caption can exceed the word limit and the compositor has to cope.
const (
	promptEnglish = "Analyze this photo. Write ONE short, funny, sassy internal monologue. Strict Rules: Max 15 words. No intro. Use Gen Z slang."
	promptThai    = "Act as a humorous Thai pet psychic. Write ONE short OS in Thai. Strict Rules: Max 20 words. Use Thai teen slang. No intro."
	promptChinese = "請看這張照片。寫一句這隻寵物現在心裡的 OS。嚴格規則：繁體中文，台灣鄉民梗，有點賤賤的。20字以內。不要前言。"
)

// PromptFor returns the fixed caption prompt for the selected language.
func PromptFor(lang models.Language) string {
	switch lang {
	case models.LanguageThai:
		return promptThai
	case models.LanguageChinese:
		return promptChinese
	default:
		return promptEnglish
	}
}
