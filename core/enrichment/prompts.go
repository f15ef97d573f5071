// ABOUTME: Prompt templates and token budgets for summaries, keywords and deep analyses
// ABOUTME: Budgets are in approximate tokens; truncate converts them at four characters per token

package enrichment

import "fmt"

const (
	summaryTokenBudget  = 6000
	keywordTokenBudget  = 4000
	fullPaperBudget     = 16000
	abstractBudget      = 12000
	keywordMaxTokens    = 100
	fullPaperMaxTokens  = 1000
	abstractMaxTokens   = 800
	defaultTemperature  = 0.3
	charsPerToken       = 4
	errorSnippetChars   = 100
	fullPaperMinChars   = 2000
	deepSummaryMinChars = 200
)

const (
	summarySystemPrompt = "You are a helpful assistant that summarizes AI and machine learning content."
	keywordSystemPrompt = "You are a helpful assistant that extracts keywords from AI and machine learning content."
	deepSystemPrompt    = "You are an expert AI researcher who provides comprehensive analysis of technical papers and articles. " +
		"Provide structured, detailed summaries that help researchers understand the key contributions and significance of the work. " +
		"Use clear formatting with headers and bullet points where appropriate."
)

// KeywordErrorSentinel replaces the keyword list when extraction fails or yields nothing
const KeywordErrorSentinel = "Error extracting keywords"

// DeepTooShortMessage is stored as the deep summary when the full text is too short to analyze
const DeepTooShortMessage = "Content too short for detailed analysis"

const (
	fullPaperTag = "\n\n---\n*Analysis based on full paper content*"
	abstractTag  = "\n\n---\n*Analysis based on abstract and metadata*"
)

func summaryPrompt(text string) string {
	return "Summarize the following text, focusing on its key findings or announcements related to AI/ML, " +
		"in approximately 3-5 sentences:\n\n" + text
}

func keywordPrompt(text string) string {
	return "Extract the 5 most important keywords or phrases from the following text related to AI/ML. " +
		"Return only a comma-separated list of keywords:\n\n" + text
}

func fullPaperPrompt(text string) string {
	return fmt.Sprintf(`Please provide a comprehensive analysis of this research paper. Structure your analysis with these sections:

**🎯 Main Contribution**
What is the primary contribution, innovation, or finding of this work?

**🔬 Methodology**
What approaches, methods, or techniques were used? Include key algorithms, datasets, or experimental setup.

**📊 Key Results**
What were the most important quantitative and qualitative results? Include specific metrics, comparisons, or findings.

**💡 Significance**
Why is this work important to the field? What problems does it solve or advance?

**⚠️ Limitations**
What are the acknowledged limitations, assumptions, or areas for improvement?

**🔮 Future Work**
What future research directions or applications are suggested?

**🏷️ Technical Keywords**
List 5-7 key technical terms or concepts that researchers would search for.

Paper to analyze:
%s

Provide a thorough but concise analysis that would help researchers quickly understand the paper's value and relevance.`, text)
}

func abstractPrompt(text string) string {
	return fmt.Sprintf(`Please provide a comprehensive analysis and summary of this research paper/article. Include:

1. **Main Contribution**: What is the primary contribution or finding?
2. **Methodology**: What approach or methods were used?
3. **Key Results**: What were the most important results or findings?
4. **Significance**: Why is this work important to the AI/ML field?
5. **Limitations**: What are the acknowledged limitations or areas for improvement?
6. **Future Work**: What future research directions are suggested?

Article to analyze:
%s

Please structure your response clearly with the above sections and provide a thorough but concise analysis.`, text)
}
