package htmlutil

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Form struct {
	Action string
	Method string
	Values url.Values
}

func isButton(kind string) bool {
	switch kind {
	case "submit", "button", "image", "reset":
		return true
	}
	return false
}

// ReadFields collects the successful controls under sel the way a browser
// would submit them, minus buttons.
func ReadFields(sel *goquery.Selection) url.Values {
	values := url.Values{}
	sel.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(s) {
		case "input":
			kind := strings.ToLower(s.AttrOr("type", "text"))
			if isButton(kind) {
				return
			}
			if kind == "checkbox" || kind == "radio" {
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				values.Add(name, s.AttrOr("value", "on"))
				return
			}
			values.Add(name, s.AttrOr("value", ""))
		case "select":
			option := s.Find("option[selected]").First()
			if option.Length() == 0 {
				option = s.Find("option").First()
			}
			if option.Length() == 0 {
				return
			}
			values.Add(name, option.AttrOr("value", CollapsedText(option)))
		case "textarea":
			values.Add(name, s.Text())
		}
	})
	return values
}

// ReadForm reads a <form>'s action, method and fields. The action is
// resolved against base.
func ReadForm(base *url.URL, form *goquery.Selection) Form {
	action := form.AttrOr("action", "")
	resolved := action
	if base != nil {
		link, err := url.Parse(action)
		if err == nil {
			resolved = base.ResolveReference(link).String()
		}
	}
	method := strings.ToUpper(form.AttrOr("method", "GET"))
	return Form{
		Action: resolved,
		Method: method,
		Values: ReadFields(form),
	}
}

// WithButton returns a copy of the form that also submits the given
// button's name and value, as clicking it would.
func (f Form) WithButton(button *goquery.Selection) Form {
	values := url.Values{}
	for k, v := range f.Values {
		values[k] = append([]string(nil), v...)
	}
	if name := button.AttrOr("name", ""); name != "" {
		values.Set(name, button.AttrOr("value", ""))
	}
	return Form{Action: f.Action, Method: f.Method, Values: values}
}
