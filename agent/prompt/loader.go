package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/order.txt
	orderRaw string

	//go:embed template/ticket.txt
	ticketRaw string

	//go:embed template/returns.txt
	returnsRaw string

	//go:embed template/recommend.txt
	recommendRaw string
)

// PromptSet holds the base instructions for each agent variant.
type PromptSet struct {
	Router    string
	Order     string
	Ticket    string
	Returns   string
	Recommend string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:    strings.TrimSpace(routerRaw),
		Order:     strings.TrimSpace(orderRaw),
		Ticket:    strings.TrimSpace(ticketRaw),
		Returns:   strings.TrimSpace(returnsRaw),
		Recommend: strings.TrimSpace(recommendRaw),
	}
}
