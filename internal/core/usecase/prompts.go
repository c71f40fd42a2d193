package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

func buildAnalysisPrompt(fileName string) string {
	return fmt.Sprintf(`Analyze this document and provide the following information:
1. Document type (e.g., GST Certificate, PAN Card, Aadhaar, Bank Statement, Invoice, Agreement, etc.)
2. Category (%s)
3. Key extracted fields (dates, numbers, names, amounts, etc.)
4. Compliance status (Valid, Expiring Soon, Expired, Action Required)
5. Any expiry date if applicable
6. AI notes and insights

Document name: %s`, strings.Join(domain.DocumentCategories, ", "), fileName)
}

const chatFileAnalysisPrompt = `Analyze this document and provide a summary including:
1. Document type
2. Key information extracted
3. Any compliance concerns
4. Recommended actions

Be specific and actionable.`

func buildAssistantPrompt(question string, docs []domain.Document, deadlines []domain.Deadline) string {
	docItems := make([]string, 0, len(docs))
	for _, d := range docs {
		docItems = append(docItems, fmt.Sprintf("%s (%s)", d.Name, d.Type))
	}
	deadlineItems := make([]string, 0, len(deadlines))
	for _, d := range deadlines {
		deadlineItems = append(deadlineItems, fmt.Sprintf("%s - Due %s", d.Title, d.DueDate.Format("2006-01-02")))
	}

	return fmt.Sprintf(`User question: %s

Available context:
Recent Documents: %s
Upcoming Deadlines: %s

Please provide a helpful, concise response based on this context. If the question is about specific documents or deadlines, reference them. If you need more information, ask clarifying questions.`,
		question,
		strings.Join(docItems, ", "),
		strings.Join(deadlineItems, ", "),
	)
}
