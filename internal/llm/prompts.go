package llm

import "fmt"

// ContactSystemPrompt instructs the model to return a LinkedIn URL and job
// title as a two-field JSON object.
const ContactSystemPrompt = `You are a professional contact enrichment specialist. Your task is to find LinkedIn profiles and current job titles for given contacts.

IMPORTANT INSTRUCTIONS:
1. You will receive a contact name and company name
2. Use the provided search results to find the person's LinkedIn profile URL
3. Extract their current job title at that company
4. Return ONLY the LinkedIn URL and job title - nothing else
5. If you cannot find the information, return "NOT_FOUND" for both fields

SEARCH STRATEGY:
- Look for LinkedIn profiles using site:linkedin.com/in/ searches
- Focus on the most recent and relevant results
- Verify the person works at the specified company
- Extract the exact job title from their LinkedIn profile

OUTPUT FORMAT:
Return a JSON object with exactly these fields:
{
    "linkedin_url": "https://linkedin.com/in/username" or "NOT_FOUND",
    "current_job_title": "Job Title" or "NOT_FOUND"
}

Do not include any other text or explanation.`

// RevenuePrompt builds the single-turn prompt asking for a company's most
// recent annual revenue in USD.
func RevenuePrompt(companyName, searchResults string) string {
	return fmt.Sprintf(`You are a financial analyst tasked with extracting the most recent annual revenue for %[1]s.

Based on the following search results, please:
1. Find the most recent annual operating revenue. If not available, use an estimate.
2. Convert it to USD if it's in another currency
3. Provide the specific source URL where you found this information
4. If you cannot find reliable revenue from data, state that clearly

Search Results:
%[2]s

Please respond in the following JSON format:
{
    "revenue_usd": <number in USD or null if not found>,
    "source_url": "<URL of the source or empty string if not found>",
    "confidence": "<high/medium/low>",
    "reasoning": "<brief explanation of how you arrived at this conclusion>"
}

Important notes:
- Prefer official financial reports, SEC filings, or investor relations pages
- Use the most recent data available
- If multiple sources conflict, choose the most authoritative one
- Convert currencies using approximate exchange rates if needed
- Use estimates from relevant sources if needed
`, companyName, searchResults)
}

// ContactPrompt is the user turn that accompanies ContactSystemPrompt.
func ContactPrompt(contactName, companyName, searchResults string) string {
	return fmt.Sprintf(`Contact Name: %s
Company Name: %s

Search Results:
%s

Please find the LinkedIn profile URL and current job title for this person.`, contactName, companyName, searchResults)
}
