// pkg/engine/card.go
package engine

import "time"

// Display modes for a ModuleResult.
const (
	DisplaySingleCard     = "single_card"
	DisplayCardCollection = "card_collection"
)

// ActionAddToInvestigation directs the API layer to add a discovered
// entity to the investigation graph.
const ActionAddToInvestigation = "add_to_investigation"

// CardAction is a typed directive attached to a card. The engine only
// shapes it; the API/storage layer interprets it.
type CardAction struct {
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	EntityType string         `json:"node_type"`
	EntityData map[string]any `json:"node_data"`
}

// Card is a normalized presentation unit produced by a module.
type Card struct {
	Title          string         `json:"title"`
	Subtitle       string         `json:"subtitle,omitempty"`
	Data           map[string]any `json:"data"`
	URL            string         `json:"url,omitempty"`
	Body           string         `json:"body,omitempty"`
	Action         *CardAction    `json:"action,omitempty"`
	Icon           string         `json:"icon,omitempty"`
	Image          string         `json:"image,omitempty"`
	ShowProperties bool           `json:"show_properties"`
}

// ModuleResult assembles cards into a displayable unit.
type ModuleResult struct {
	Nodes    []Card `json:"nodes"`
	Display  string `json:"display"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// NewCard builds a card with properties shown by default.
func NewCard(title string, data map[string]any) Card {
	if data == nil {
		data = map[string]any{}
	}
	return Card{Title: title, Data: data, ShowProperties: true}
}

// WithSubtitle returns a copy of the card with the subtitle set.
func (c Card) WithSubtitle(subtitle string) Card {
	c.Subtitle = subtitle
	return c
}

// WithURL returns a copy of the card with the link URL set.
func (c Card) WithURL(url string) Card {
	c.URL = url
	return c
}

// WithBody returns a copy of the card with the body text set.
func (c Card) WithBody(body string) Card {
	c.Body = body
	return c
}

// WithAction returns a copy of the card with the action attached.
func (c Card) WithAction(action CardAction) Card {
	c.Action = &action
	return c
}

// WithIcon returns a copy of the card with the icon set.
func (c Card) WithIcon(icon string) Card {
	c.Icon = icon
	return c
}

// WithImage returns a copy of the card with the image payload set
// (base64 data URL or plain URL).
func (c Card) WithImage(image string) Card {
	c.Image = image
	return c
}

// WithoutProperties returns a copy of the card with the property table
// hidden in the frontend.
func (c Card) WithoutProperties() Card {
	c.ShowProperties = false
	return c
}

// BuildResult assembles cards into a ModuleResult.
func BuildResult(cards []Card, display, title, subtitle string) ModuleResult {
	if cards == nil {
		cards = []Card{}
	}
	return ModuleResult{
		Nodes:    cards,
		Display:  display,
		Title:    title,
		Subtitle: subtitle,
	}
}

// AddToInvestigationAction builds the standard action for attaching a
// discovered entity to the investigation graph.
func AddToInvestigationAction(entityType string, entityData map[string]any) CardAction {
	if entityData == nil {
		entityData = map[string]any{}
	}
	return CardAction{
		Type:       ActionAddToInvestigation,
		Label:      "Add to Investigation",
		EntityType: entityType,
		EntityData: entityData,
	}
}

// EntityData builds a standardized entity payload tagged with the
// discovering module and the discovery timestamp.
func EntityData(moduleName, entityType, name string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	return map[string]any{
		"type":          entityType,
		"name":          name,
		"data":          data,
		"source_module": moduleName,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
}
