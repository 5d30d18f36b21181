package capitol

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hadoku/trader/internal/contracts"
)

// sourceTag marks signals ingested from this client
const sourceTag = "capitol_trades"

var sizeRangeRe = regexp.MustCompile(`^([\d,]+)(?:K|M)?\s*[–-]\s*([\d,]+)\s*(K|M)?$`)

// ParseTradesHTML extracts disclosures from one trades listing page.
// Rows that cannot be parsed are skipped, not fatal: the listing markup
// drifts and one malformed row must not lose the rest of the page.
func ParseTradesHTML(html string) ([]contracts.Signal, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var signals []contracts.Signal
	doc.Find("table.q-table tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		politician := strings.TrimSpace(cells.Eq(0).Find(".q-fieldset .politician-name").Text())
		if politician == "" {
			politician = strings.TrimSpace(cells.Eq(0).Text())
		}
		ticker := strings.TrimSpace(cells.Eq(1).Find(".q-field.issuer-ticker").Text())
		if ticker == "" {
			ticker = strings.TrimSpace(cells.Eq(1).Text())
		}
		// listing shows "AAPL:US"; only the symbol matters here
		if idx := strings.IndexByte(ticker, ':'); idx > 0 {
			ticker = ticker[:idx]
		}

		disclosed, ok1 := parseDate(strings.TrimSpace(cells.Eq(2).Text()))
		traded, ok2 := parseDate(strings.TrimSpace(cells.Eq(3).Text()))
		action := parseAction(strings.TrimSpace(cells.Eq(4).Text()))
		size := parseSizeRange(strings.TrimSpace(cells.Eq(5).Text()))
		price := parsePrice(strings.TrimSpace(cells.Eq(6).Text()))

		if politician == "" || ticker == "" || action == "" || !ok1 || !ok2 {
			return
		}

		signals = append(signals, contracts.Signal{
			Ticker:         strings.ToUpper(ticker),
			Action:         action,
			AssetType:      contracts.AssetStock,
			TradePrice:     price,
			TradeDate:      traded,
			DisclosureDate: disclosed,
			SizeEstimate:   size,
			Source:         sourceTag,
			Politician:     politician,
		})
	})

	return signals, nil
}

// parseDate handles the two formats the listing uses: an ISO date and a
// "2 Jan 2024" long form.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2 Jan 2006", "02 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseAction(s string) contracts.TradeAction {
	switch strings.ToLower(s) {
	case "buy", "purchase":
		return contracts.ActionBuy
	case "sell", "sale", "sell (partial)", "sell (full)":
		return contracts.ActionSell
	default:
		return ""
	}
}

// parseSizeRange converts the disclosed range ("15K–50K", "1M–5M") to
// its midpoint in dollars. Disclosures never carry exact amounts.
func parseSizeRange(s string) float64 {
	m := sizeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	lo := parseNum(m[1])
	hi := parseNum(m[2])
	mult := 1.0
	switch m[3] {
	case "K":
		mult = 1_000
	case "M":
		mult = 1_000_000
	}

	// a "15K–50K" row scales both ends even though only the second
	// keeps its suffix
	if strings.Contains(s, "K") && m[3] == "" {
		mult = 1_000
	}
	return (lo + hi) / 2 * mult
}

func parsePrice(s string) float64 {
	s = strings.TrimPrefix(s, "$")
	return parseNum(s)
}

func parseNum(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" || s == "N/A" {
		return 0
	}
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
