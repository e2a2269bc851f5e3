package crawl

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,18}\d`)
)

// Extensions commonly caught by the email regex inside asset paths.
var bogusEmailSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}

var socialDomains = map[string]string{
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"linkedin.com":  "linkedin",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"tiktok.com":    "tiktok",
}

// signals accumulates deduplicated contact details across crawled pages.
type signals struct {
	emails       map[string]struct{}
	phones       map[string]struct{}
	socials      map[string]string
	contactForms []string
}

func newSignals() *signals {
	return &signals{
		emails:  make(map[string]struct{}),
		phones:  make(map[string]struct{}),
		socials: make(map[string]string),
	}
}

// extractSignals parses a page and collects emails, phones, social links and
// contact-form URLs. A page that fails to parse yields empty signals.
func extractSignals(base *url.URL, html string) *signals {
	s := newSignals()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return s
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case strings.HasPrefix(strings.ToLower(href), "mailto:"):
			addr := strings.SplitN(href[len("mailto:"):], "?", 2)[0]
			s.addEmail(addr)
		case strings.HasPrefix(strings.ToLower(href), "tel:"):
			s.addPhone(href[len("tel:"):])
		default:
			s.addSocial(href)
		}
	})

	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		if !looksLikeContactForm(sel) {
			return
		}
		action, _ := sel.Attr("action")
		s.addContactForm(base, action)
	})

	doc.Find("script, style, noscript").Remove()
	text := doc.Text()
	for _, match := range emailPattern.FindAllString(text, -1) {
		s.addEmail(match)
	}
	for _, match := range phonePattern.FindAllString(text, -1) {
		s.addPhone(match)
	}

	return s
}

func (s *signals) addEmail(raw string) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return
	}
	for _, suffix := range bogusEmailSuffixes {
		if strings.HasSuffix(email, suffix) {
			return
		}
	}
	s.emails[email] = struct{}{}
}

func (s *signals) addPhone(raw string) {
	phone := strings.TrimSpace(raw)
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 7 || len(digits) > 15 {
		return
	}
	s.phones[phone] = struct{}{}
}

func (s *signals) addSocial(href string) {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	for domain, platform := range socialDomains {
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			continue
		}
		if isSocialNoise(u.Path) {
			return
		}
		// First link per platform wins; pages tend to list the canonical
		// profile before share widgets.
		if _, exists := s.socials[platform]; !exists {
			s.socials[platform] = u.String()
		}
		return
	}
}

func (s *signals) addContactForm(base *url.URL, action string) {
	action = strings.TrimSpace(action)
	var resolved string
	if action == "" {
		resolved = base.String()
	} else {
		ref, err := url.Parse(action)
		if err != nil {
			return
		}
		resolved = base.ResolveReference(ref).String()
	}
	for _, existing := range s.contactForms {
		if existing == resolved {
			return
		}
	}
	s.contactForms = append(s.contactForms, resolved)
}

// merge folds signals from an additional page into the receiver.
func (s *signals) merge(other *signals) {
	for email := range other.emails {
		s.emails[email] = struct{}{}
	}
	for phone := range other.phones {
		s.phones[phone] = struct{}{}
	}
	for platform, link := range other.socials {
		if _, exists := s.socials[platform]; !exists {
			s.socials[platform] = link
		}
	}
	for _, form := range other.contactForms {
		s.addContactForm(&url.URL{}, form)
	}
}

func (s *signals) emailList() []string {
	return sortedKeys(s.emails)
}

func (s *signals) phoneList() []string {
	return sortedKeys(s.phones)
}

func (s *signals) contactForm() *string {
	if len(s.contactForms) == 0 {
		return nil
	}
	form := s.contactForms[0]
	return &form
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// looksLikeContactForm reports whether a form contains both a free-text field
// and something resembling an email input.
func looksLikeContactForm(sel *goquery.Selection) bool {
	hasEmail := false
	hasText := false

	sel.Find("input, textarea").Each(func(_ int, input *goquery.Selection) {
		inputType, _ := input.Attr("type")
		name, _ := input.Attr("name")
		lowered := strings.ToLower(inputType + " " + name)
		if strings.Contains(lowered, "email") {
			hasEmail = true
		}
		if goquery.NodeName(input) == "textarea" || inputType == "text" || inputType == "" {
			hasText = true
		}
	})

	return hasEmail && hasText
}

// sharePathPrefixes flag platform URLs that are share widgets, not profiles.
var sharePathPrefixes = []string{"/share", "/sharer", "/intent", "/plugins", "/embed"}

func isSocialNoise(path string) bool {
	lowered := strings.ToLower(path)
	for _, prefix := range sharePathPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}
