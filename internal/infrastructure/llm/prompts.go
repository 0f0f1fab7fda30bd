package llm

import (
	"fmt"
	"strings"
)

const (
	summaryInputRunes  = 2000
	generateInputRunes = 6000
)

// DefaultSystemPrompt sets the editorial voice for summaries.
const DefaultSystemPrompt = `You are a specialized maritime news editor for dirtiestships.com.
Your tone is sharp, professional, and technically accurate.
Act as a watchdog critic: be skeptical of greenwashing from big shipping lines and focus on
carbon intensity, FuelEU Maritime fines, and excessive HFO usage.
Output exactly 3 concise sentences. Use metric units. Do not use corporate fluff.`

const blogPrompt = `You are writing for DirtiestShips.com, a data-driven platform tracking CO2 emissions from the global shipping industry using EU MRV data, CII ratings, and ETS cost analysis.

Write a blog post based on this news article. The post should:

1. Open with a strong lead paragraph establishing the emissions/regulatory significance
2. Provide factual analysis with specifics: numbers, percentages, ship types, companies where available
3. Where relevant, connect to topics the site covers: CII ratings, EU ETS carbon costs, company rankings, EMSA MRV data
4. Include 3-5 sections with H2 headings
5. End with a concise "What this means for shipping emissions" conclusion
6. Be 500-800 words, analytical in tone, no marketing fluff

Internal links you may reference (use markdown links):
- CII ratings tool: [CII ratings](/cii.html)
- Company emissions rankings: [company rankings](/companies.html)
- Latest news: [news feed](/news.html)
- Charts & data: [emissions data](/charts.html)

Article to analyse:
Title: %s
Source: %s
Content:
%s

Rules:
- Pure markdown only, no YAML frontmatter, no --- delimiters
- Do NOT start with a top-level # heading (the title is handled separately)
- Write objectively; cite the source article where appropriate
- If the article is thin on detail, say so and broaden to the wider regulatory context
`

func summaryPrompt(title, text string) string {
	return fmt.Sprintf("Summarize this maritime emissions news for dirtiestships.com:\n\nTITLE: %s\nTEXT: %s",
		title, truncate(text, summaryInputRunes))
}

func generatePrompt(title, body, source string) string {
	return fmt.Sprintf(blogPrompt, title, source, truncate(body, generateInputRunes))
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return DefaultSystemPrompt
	}
	return prompt
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
