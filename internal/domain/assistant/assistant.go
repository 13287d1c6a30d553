// Package assistant holds the hotelier assistant conversation and the contracts
// of the text services behind it. Service faults never leave this package as
// errors; they become canned replies.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/domain/shared"
)

const (
	WelcomeMessage        = "Welcome to the Intelligence Hub. I am your Britrip Assistant. How can I optimize your portfolio today?"
	EmptyReplyFallback    = "I am processing your synchronization request. Please stand by."
	ErrorReplyFallback    = "Apologies, there was a disruption in the neural sync. Please try again."
	EmptyEnhanceFallback  = "Unable to enhance description at this time."
	ErrorEnhanceFallback  = "Error enhancing description. Please check your network or try again."
	DefaultCitationTitle  = "Source"
	defaultBaseNotes      = "A wonderful place to stay."
	maxReplyWordsGuidance = 150
)

// Role of a transcript message
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Citation is a grounding source attached to a reply
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Message is one entry of the transcript
type Message struct {
	Role      Role       `json:"role"`
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	At        time.Time  `json:"at"`
	// Fallback is set when Text is a canned reply
	Fallback bool `json:"fallback,omitempty"`
}

// CompletionOptions tune a completion call
type CompletionOptions struct {
	GroundingEnabled bool
}

// Completion is the answer of the text service
type Completion struct {
	Text      string
	Citations []Citation
}

// TextCompleter answers a free-form prompt
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (*Completion, error)
}

// DescriptionEnhancer rewrites a property description
type DescriptionEnhancer interface {
	Enhance(ctx context.Context, rec *property.Record) (string, error)
}

// Context is what the assistant knows about the user's current view
type Context struct {
	Screen string
	Record *property.Record
}

// Conversation is the transcript of one session. It is safe for concurrent use;
// only one Send runs at a time.
type Conversation struct {
	mu        sync.Mutex
	messages  []Message
	sending   bool
	completer TextCompleter
	now       func() time.Time
}

// NewConversation starts a transcript with the welcome message
func NewConversation(completer TextCompleter, now func() time.Time) *Conversation {
	if now == nil {
		now = time.Now
	}
	return &Conversation{
		messages:  []Message{{Role: RoleAI, Text: WelcomeMessage, At: now()}},
		completer: completer,
		now:       now,
	}
}

// Messages returns a copy of the transcript
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Sending reports whether a reply is pending
func (c *Conversation) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Send appends the user's text and the assistant's reply. Blank input is
// ignored and returns nil. A send while another is pending fails with
// shared.ErrOperationPending. The reply is a fallback when the service fails.
func (c *Conversation) Send(ctx context.Context, text string, view Context) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, shared.ErrOperationPending
	}
	c.sending = true
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text, At: c.now()})
	c.mu.Unlock()

	reply := c.complete(ctx, BuildPrompt(text, view))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	c.messages = append(c.messages, reply)
	return &reply, nil
}

func (c *Conversation) complete(ctx context.Context, prompt string) Message {
	msg := Message{Role: RoleAI}
	if c.completer == nil {
		msg.Text, msg.Fallback = ErrorReplyFallback, true
		msg.At = c.now()
		return msg
	}
	res, err := c.completer.Complete(ctx, prompt, CompletionOptions{GroundingEnabled: true})
	msg.At = c.now()
	switch {
	case err != nil:
		msg.Text, msg.Fallback = ErrorReplyFallback, true
	case res == nil || strings.TrimSpace(res.Text) == "":
		msg.Text, msg.Fallback = EmptyReplyFallback, true
	default:
		msg.Text = res.Text
	}
	if err == nil && res != nil {
		msg.Citations = NormalizeCitations(res.Citations)
	}
	return msg
}

// NormalizeCitations fills missing titles and drops entries without a URL
func NormalizeCitations(in []Citation) []Citation {
	if len(in) == 0 {
		return nil
	}
	out := make([]Citation, 0, len(in))
	for _, c := range in {
		if c.URL == "" {
			continue
		}
		if strings.TrimSpace(c.Title) == "" {
			c.Title = DefaultCitationTitle
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// BuildPrompt frames a user query with the current screen and active record
func BuildPrompt(query string, view Context) string {
	var b strings.Builder
	b.WriteString("You are the Britrip Hotelier Assistant, an expert in global hospitality data, revenue management, and property syndication.\n")
	fmt.Fprintf(&b, "Context: The user is currently on the %q page.\n", view.Screen)
	if view.Record != nil {
		if data, err := json.Marshal(view.Record); err == nil {
			fmt.Fprintf(&b, "Active Property Data: %s\n", data)
		}
	}
	fmt.Fprintf(&b, "User Query: %s\n\n", query)
	b.WriteString("Guidelines:\n")
	b.WriteString("- Be professional, concise, and institutional.\n")
	b.WriteString("- Provide high-yield advice (ADR optimization, description conversion).\n")
	b.WriteString("- Use terminology like \"Syndication\", \"Conversion Rate\", \"Trade Zone\", and \"Market Index\".\n")
	b.WriteString("- If query is about trends or market news, use Google Search grounding.\n")
	fmt.Fprintf(&b, "- Keep responses under %d words.\n", maxReplyWordsGuidance)
	return b.String()
}

// BuildEnhancePrompt asks for a marketing description of rec
func BuildEnhancePrompt(rec *property.Record) string {
	notes := rec.Description
	if strings.TrimSpace(notes) == "" {
		notes = defaultBaseNotes
	}
	var b strings.Builder
	b.WriteString("You are a luxury hospitality marketing expert.\n")
	b.WriteString("Transform the following raw hotel data into a professional, high-converting description for a premium booking platform.\n\n")
	fmt.Fprintf(&b, "Hotel Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Address: %s\n", rec.Address)
	fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	fmt.Fprintf(&b, "Amenities: %s\n", strings.Join(rec.Amenities, ", "))
	fmt.Fprintf(&b, "Base Notes: %s\n\n", notes)
	b.WriteString("Focus on the unique atmosphere, the guest experience, and the benefits of the location.\n")
	b.WriteString("Tone: Professional, inviting, and slightly sophisticated.\n")
	b.WriteString("Length: Approximately 100-150 words.\n")
	return b.String()
}

// Enhance runs enhancer and maps failures to the enhancement fallbacks.
// The second result reports whether the text came from the service.
func Enhance(ctx context.Context, enhancer DescriptionEnhancer, rec *property.Record) (string, bool) {
	if enhancer == nil {
		return ErrorEnhanceFallback, false
	}
	text, err := enhancer.Enhance(ctx, rec)
	if err != nil {
		return ErrorEnhanceFallback, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyEnhanceFallback, false
	}
	return text, true
}

// CompleterEnhancer adapts a TextCompleter into a DescriptionEnhancer
type CompleterEnhancer struct {
	Completer TextCompleter
}

// Enhance implements DescriptionEnhancer
func (e CompleterEnhancer) Enhance(ctx context.Context, rec *property.Record) (string, error) {
	res, err := e.Completer.Complete(ctx, BuildEnhancePrompt(rec), CompletionOptions{})
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	return res.Text, nil
}
