package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"pricescout/config"
)

// selectorRef is one step in a field's fallback chain. An empty Attr reads
// the element's text content; otherwise the named attribute is read.
type selectorRef struct {
	Selector string `json:"selector"`
	Attr     string `json:"attr"`
}

// fieldSpec maps one rawItem field to an ordered chain of selectors tried
// until one yields a non-empty value.
type fieldSpec struct {
	Name  string        `json:"name"`
	Chain []selectorRef `json:"chain"`
}

// extractPlan describes one source's card layout. The fast path and the
// handle fallback both interpret the same plan, so field precedence is
// identical on either path.
type extractPlan struct {
	CardSelector string      `json:"card_selector"`
	Fields       []fieldSpec `json:"fields"`
}

// browserSession owns one launched browser for the duration of a single
// provider search.
type browserSession struct {
	browser *rod.Browser
	page    *rod.Page
}

// openSession launches a browser and navigates to url, applying the usual
// automation-fingerprint overrides before the page loads.
func openSession(ctx context.Context, opts config.BrowserOptions, url string) (s *browserSession, err error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Leakless(false)

	// Use system Chromium in Docker, auto-detect locally
	if opts.BrowserPath != "" {
		l = l.Bin(opts.BrowserPath)
	} else if _, statErr := os.Stat("/usr/bin/chromium-browser"); statErr == nil {
		l = l.Bin("/usr/bin/chromium-browser")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if err != nil {
			browser.Close()
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page = page.Context(ctx)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1920, Height: 1080, DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	_, err = page.EvalOnNewDocument(fmt.Sprintf(`
		Object.defineProperty(navigator, 'userAgent', {
			get: function () { return %q; }
		});
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined,
		});
		Object.defineProperty(navigator, 'plugins', {
			get: () => [1, 2, 3, 4, 5],
		});
		Object.defineProperty(navigator, 'languages', {
			get: () => ['en-US', 'en'],
		});
		window.chrome = {
			runtime: {},
		};
	`, opts.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("failed to install page overrides: %w", err)
	}

	if err := page.Timeout(opts.NavigateTimeout).Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Timeout(opts.NavigateTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	return &browserSession{browser: browser, page: page}, nil
}

func (s *browserSession) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
}

// waitForCards blocks until at least one card element appears or the wait
// expires.
func (s *browserSession) waitForCards(plan extractPlan, wait time.Duration) error {
	_, err := s.page.Timeout(wait).Element(plan.CardSelector)
	return err
}

// scroll nudges the page down repeatedly so lazy-loaded cards render.
func (s *browserSession) scroll(count int, pause time.Duration) {
	for i := 0; i < count; i++ {
		if _, err := s.page.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			return
		}
		time.Sleep(pause)
	}
}

// extract runs the fast in-page extraction and falls back to per-element
// handles when the script evaluation fails. Zero cards from the fast path
// is a valid result, not a trigger for the fallback.
func (s *browserSession) extract(plan extractPlan, source string) ([]rawItem, error) {
	items, err := s.fastExtract(plan)
	if err == nil {
		return items, nil
	}
	log.Printf("[%s] fast extraction failed, using element handles: %v", source, err)
	return s.handleExtract(plan)
}

// fastExtract pulls every card's fields in a single script evaluation. The
// plan is passed into the page and interpreted there, so one round trip
// covers any number of cards.
func (s *browserSession) fastExtract(plan extractPlan) ([]rawItem, error) {
	result, err := s.page.Eval(`(plan) => {
		const pick = (card, chain) => {
			for (const ref of chain) {
				const el = card.querySelector(ref.selector);
				if (!el) continue;
				const v = ref.attr ? el.getAttribute(ref.attr) : el.textContent;
				if (v && v.trim()) return v.trim();
			}
			return '';
		};
		const out = [];
		for (const card of document.querySelectorAll(plan.card_selector)) {
			const item = {};
			for (const f of plan.fields) {
				item[f.name] = pick(card, f.chain);
			}
			out.push(item);
		}
		return JSON.stringify(out);
	}`, plan)
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	if err := json.Unmarshal([]byte(result.Value.Str()), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode extraction result: %w", err)
	}
	items := make([]rawItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromFields(row))
	}
	return items, nil
}

// handleExtract repeats the plan card by card through element handles. One
// round trip per selector per card, but it works when in-page scripting is
// restricted.
func (s *browserSession) handleExtract(plan extractPlan) ([]rawItem, error) {
	cards, err := s.page.Elements(plan.CardSelector)
	if err != nil {
		return nil, err
	}
	items := make([]rawItem, 0, len(cards))
	for _, card := range cards {
		fields := make(map[string]string, len(plan.Fields))
		for _, f := range plan.Fields {
			fields[f.Name] = pickFromHandle(card, f.Chain)
		}
		items = append(items, itemFromFields(fields))
	}
	return items, nil
}

func pickFromHandle(card *rod.Element, chain []selectorRef) string {
	for _, ref := range chain {
		has, el, err := card.Has(ref.Selector)
		if err != nil || !has {
			continue
		}
		var value string
		if ref.Attr != "" {
			attr, err := el.Attribute(ref.Attr)
			if err != nil || attr == nil {
				continue
			}
			value = *attr
		} else {
			text, err := el.Text()
			if err != nil {
				continue
			}
			value = text
		}
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}

func itemFromFields(fields map[string]string) rawItem {
	return rawItem{
		Title:         fields["title"],
		Link:          fields["link"],
		Price:         fields["price"],
		CurrencyHint:  fields["price_currency"],
		OriginalPrice: fields["original_price"],
		Condition:     fields["condition"],
		Location:      fields["location"],
		Shipping:      fields["shipping"],
		Image:         fields["image"],
	}
}
