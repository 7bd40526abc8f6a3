package view

import (
	_ "embed"
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var defaultCatalog []byte

// DefaultLocale is used when negotiation finds no better match.
const DefaultLocale = "en"

var (
	ErrEmptyCatalog   = errors.New("view: label catalog has no locales")
	ErrNoDefaultLabel = errors.New("view: label catalog has no default locale")
	ErrParseCatalog   = errors.New("view: failed to parse label catalog")
)

// Labels are the user-visible strings of one locale.
type Labels struct {
	Title          string `yaml:"title"`
	SignedInAs     string `yaml:"signed_in_as"`
	SignIn         string `yaml:"sign_in"`
	SigningIn      string `yaml:"signing_in"`
	SignOut        string `yaml:"sign_out"`
	Subscribe      string `yaml:"subscribe"`
	Processing     string `yaml:"processing"`
	Loading        string `yaml:"loading"`
	NoSubscription string `yaml:"no_subscription"`
	Status         string `yaml:"status"`
	Ends           string `yaml:"ends"`
	SignInFirst    string `yaml:"sign_in_first"`
	CheckoutError  string `yaml:"checkout_error"`
	PurchaseFailed string `yaml:"purchase_failed"`
	LoginFailed    string `yaml:"login_failed"`
	Redirecting    string `yaml:"redirecting"`
	DateLayout     string `yaml:"date_layout"`
}

// Catalog holds labels for a set of locales.
type Catalog struct {
	tags    []language.Tag
	labels  []Labels
	matcher language.Matcher
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog reads a YAML document keyed by BCP 47 locale. Missing keys of
// a regional locale fall back to its base language, then to DefaultLocale.
func ParseCatalog(data []byte) (*Catalog, error) {
	raw := map[string]Labels{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrParseCatalog, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCatalog
	}
	def, ok := raw[DefaultLocale]
	if !ok {
		return nil, ErrNoDefaultLabel
	}

	c := &Catalog{
		tags:   []language.Tag{language.Make(DefaultLocale)},
		labels: []Labels{def},
	}
	for locale, l := range raw {
		if locale == DefaultLocale {
			continue
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, errors.Join(ErrParseCatalog, fmt.Errorf("locale %q: %w", locale, err))
		}
		if base, _ := tag.Base(); base.String() != locale {
			if parent, ok := raw[base.String()]; ok {
				l = fill(l, parent)
			}
		}
		c.tags = append(c.tags, tag)
		c.labels = append(c.labels, fill(l, def))
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Labels negotiates prefs, in Accept-Language syntax ("de-CH,de;q=0.9") or
// a single tag, against the catalog.
func (c *Catalog) Labels(prefs string) Labels {
	tags, _, err := language.ParseAcceptLanguage(prefs)
	if err != nil || len(tags) == 0 {
		return c.labels[0]
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.labels[0]
	}
	return c.labels[idx]
}

// fill copies empty string fields of l from fallback.
func fill(l, fallback Labels) Labels {
	dst := reflect.ValueOf(&l).Elem()
	src := reflect.ValueOf(fallback)
	for i := range dst.NumField() {
		f := dst.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(src.Field(i).String())
		}
	}
	return l
}
