package runtime

import (
	"fmt"
	"strings"

	agentsx "github.com/cartup/cartup-agent/agent/agents"
	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
)

const idFormattingRules = `CRITICAL ID FORMATTING RULES:
- ALL IDs must be in LOWERCASE format: user_id (e.g., 'u101'), order_id (e.g., 'o302'), ticket_id (e.g., 't602'), product_id (e.g., 'p001').
- When users mention IDs verbally (e.g., 'o302', 'O302', 'O 302'), ALWAYS convert to lowercase before calling tools (e.g., 'o302').
- Database lookups are case-sensitive and will fail if IDs are not lowercase.`

const scopeLimitation = `SCOPE LIMITATION - CRITICAL:
- You are a CartUp e-commerce customer service agent. You can ONLY help with orders, support tickets, returns and refunds, product recommendations, and general CartUp platform questions.
- If the user asks for anything unrelated (songs, jokes, weather, general knowledge), politely decline and redirect to CartUp topics.`

const responseStyleEnglish = `RESPONSE STYLE - CRITICAL:
- When presenting tool results, ALWAYS convert raw data into natural, conversational speech; never read structured data verbatim.
- Always use 'tk' (Taka) as the currency unit, not 'rupee' or other currencies.
- Focus on the key information the customer cares about, not technical details.
- Speak in short, clear sentences.`

const responseStyleBengali = `RESPONSE STYLE - CRITICAL:
- When presenting tool results, ALWAYS convert raw data into natural, conversational Bangladesh Bengali; never read structured data verbatim.
- Always use 'টাকা' or 'tk' (Taka) as the currency unit.
- Use natural Bengali expressions: 'জি, অবশ্যই', 'আচ্ছা', 'ঠিক আছে', 'ধন্যবাদ'.
- Speak in short, clear sentences.`

const thankYouBrandingEnglish = `THANK YOU RESPONSE - CRITICAL:
- When the user expresses gratitude, ALWAYS respond with: 'You're welcome. Thank you for staying with Bangladesh number one e-commerce platform CartUp.'`

const thankYouBrandingBengali = `THANK YOU RESPONSE - CRITICAL:
- When the user expresses gratitude, ALWAYS respond with: 'আপনাকে স্বাগতম। বাংলাদেশের নম্বর ওয়ান ই-কমার্স প্ল্যাটফর্ম কার্টআপের সাথে থাকার জন্য ধন্যবাদ।'`

const greetingHintEnglish = `Say concisely: 'Welcome to Bangladesh number one e-commerce platform CartUp. How can I help you today?' Keep it short and to the point. No extra explanations.`

const greetingHintBengali = `Say concisely: 'স্বাগতম বাংলাদেশের নম্বর ওয়ান ই-কমার্স প্ল্যাটফর্ম কার্টআপে। আমি আপনাকে কীভাবে সাহায্য করতে পারি?' Keep it short and to the point. No extra explanations.`

const defaultTransferHint = `Briefly acknowledge the transfer and ask one short question appropriate to your domain.`

func languageDirective(lang statex.Language) string {
	if lang == statex.LanguageBengali {
		return fmt.Sprintf("IMPORTANT: Respond in Bengali with Bangladesh accent and cultural context (%s). All your responses must be in Bangladesh Bengali. Use Bangladesh-specific vocabulary and expressions, and quote amounts in Taka.", lang)
	}
	return fmt.Sprintf("IMPORTANT: Respond in English (%s). The user has selected English as their preferred language. All your responses must be in English.", lang)
}

// activationDirectives builds the synthetic system turn injected on every
// activation: display name, deterministic session summary, ID rules, and
// language-specific response style. The thank-you branding block is skipped
// for the router, matching its concise greeting role.
func activationDirectives(def agentsx.Definition, summary string, lang statex.Language) string {
	style := responseStyleEnglish
	branding := thankYouBrandingEnglish
	if lang == statex.LanguageBengali {
		style = responseStyleBengali
		branding = thankYouBrandingBengali
	}

	blocks := []string{
		fmt.Sprintf("You are %s. Current session summary:\n%s", def.DisplayName, strings.TrimRight(summary, "\n")),
		def.Instructions,
		idFormattingRules,
		style,
	}
	if def.Name != contractx.AgentRouter {
		blocks = append(blocks, branding)
	}
	blocks = append(blocks, scopeLimitation, languageDirective(lang))
	return strings.Join(blocks, "\n\n")
}

func openingGreetingHint(lang statex.Language) string {
	if lang == statex.LanguageBengali {
		return greetingHintBengali
	}
	return greetingHintEnglish
}

func transferGreetingHint(def agentsx.Definition) string {
	if def.TransferGreeting != "" {
		return def.TransferGreeting
	}
	return defaultTransferHint
}
