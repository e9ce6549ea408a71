package technique

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/zjrosen/mise/internal/quantity"
	"github.com/zjrosen/mise/internal/recipe"
)

// Item is an entity reference as seen by a template. Unresolved references
// keep the text the author wrote as their Name.
type Item struct {
	Key      string
	Name     string
	Amount   string // "200 grams", "2"; empty when no quantity is known
	Counted  bool   // Amount is a bare count
	Resolved bool
}

func (i Item) String() string { return i.Name }

// TemplateContext holds the variables a technique template renders.
type TemplateContext struct {
	Target      *Item
	Ingredients []Item
	Products    []Item
	Duration    string
	Temperature string
	Args        map[string]any
}

// NewTemplateContext flattens resolved parameters for template execution.
// A duration or temperature that could not be coerced renders as written.
func NewTemplateContext(p recipe.Parameters) TemplateContext {
	ctx := TemplateContext{
		Ingredients: itemsOf(p.Ingredients),
		Products:    itemsOf(p.Products),
		Args:        make(map[string]any, len(p.Extra)),
	}
	if !p.Target.IsZero() {
		item := itemOf(p.Target)
		ctx.Target = &item
	}
	for k, v := range p.Extra {
		ctx.Args[k] = v
	}
	if p.Duration != nil {
		ctx.Duration = p.Duration.String()
	} else if raw, ok := p.Extra[recipe.ParamDuration]; ok {
		ctx.Duration = fmt.Sprint(raw)
	}
	if p.Temperature != nil {
		ctx.Temperature = p.Temperature.String()
	} else if raw, ok := p.Extra[recipe.ParamTemperature]; ok {
		ctx.Temperature = fmt.Sprint(raw)
	}
	return ctx
}

func itemOf(ref recipe.Ref) Item {
	if e, ok := ref.Entity(); ok {
		return Item{
			Key:      e.Key,
			Name:     e.Name,
			Amount:   e.Amount(),
			Counted:  e.Units.IsZero() || e.Units == quantity.Count,
			Resolved: true,
		}
	}
	key, _ := ref.KeyString()
	return Item{Key: key, Name: ref.Display()}
}

func itemsOf(refs recipe.Refs) []Item {
	if refs.IsZero() {
		return nil
	}
	items := make([]Item, 0, refs.Len())
	for _, ref := range refs.Items() {
		items = append(items, itemOf(ref))
	}
	return items
}

// templateFuncs are available to every technique template.
var templateFuncs = template.FuncMap{
	"name":   nameOf,
	"list":   joinList,
	"amount": amountOf,
}

func nameOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *Item:
		if x == nil {
			return ""
		}
		return x.Name
	case Item:
		return x.Name
	case []Item:
		names := make([]string, len(x))
		for i, item := range x {
			names[i] = item.Name
		}
		return joinList(names)
	default:
		return fmt.Sprint(v)
	}
}

func amountOf(v any) string {
	switch x := v.(type) {
	case *Item:
		if x == nil {
			return ""
		}
		return measured(*x)
	case Item:
		return measured(x)
	case []Item:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = measured(item)
		}
		return joinList(parts)
	default:
		return nameOf(v)
	}
}

func measured(i Item) string {
	switch {
	case i.Amount == "":
		return i.Name
	case i.Counted:
		return i.Amount + " " + i.Name
	default:
		return i.Amount + " of " + i.Name
	}
}

// joinList joins names as "a", "a and b" or "a, b and c". It accepts
// []string, []Item or a single value.
func joinList(v any) string {
	var names []string
	switch x := v.(type) {
	case []string:
		names = x
	case []Item:
		return nameOf(x)
	case []any:
		for _, e := range x {
			names = append(names, fmt.Sprint(e))
		}
	default:
		return nameOf(v)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
