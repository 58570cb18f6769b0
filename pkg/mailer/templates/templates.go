package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines the fields available to membership templates.
type EmailData struct {
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	LogoURL     string `json:"LogoURL"`
	SupportURL  string `json:"SupportURL"`

	CommunityID   string    `json:"CommunityID"`
	CommunityName string    `json:"CommunityName"`
	Time          string    `json:"Time"`
	TimeAt        time.Time `json:"TimeAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

// ---- FuncMaps ----

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// ---- Template names ----

const (
	CommunityJoined = "community_joined"
	CommunityLeft   = "community_left"
)

type executor interface {
	Execute(w io.Writer, data any) error
}

// parsed templates by file name; the embedded FS never changes.
var cache sync.Map

func lookup(filename string, isHTML bool) (executor, error) {
	if t, ok := cache.Load(filename); ok {
		return t.(executor), nil
	}
	var (
		tpl executor
		err error
	)
	if isHTML {
		tpl, err = htmpl.New(filename).Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, filename)
	} else {
		tpl, err = texttpl.New(filename).Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", filename, err)
	}
	cache.Store(filename, tpl)
	return tpl, nil
}

func renderFile(filename string, isHTML bool, data any) (string, error) {
	tpl, err := lookup(filename, isHTML)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
// The subject is trimmed to a single line.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = renderFile(name+".subject.tmpl", false, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderFile(name+".text.tmpl", false, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderFile(name+".html.tmpl", true, data); err != nil {
		return "", "", "", err
	}
	return strings.Join(strings.Fields(subject), " "), text, html, nil
}
