package compras

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts covers the formats the upstream API has been observed to
// emit for date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseUpstreamDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("compras: unrecognized date %q", raw)
}

// Client wraps interactions with the purchases API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a new client. The token is sent as a bearer
// credential on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("compras: %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

type purchaseRow struct {
	Branch      string          `json:"sucursal"`
	AccountCode string          `json:"codigo_normalizado"`
	AccountID   string          `json:"cuenta_id"`
	Folio       string          `json:"folio"`
	Amount      decimal.Decimal `json:"monto"`
	Month       string          `json:"mes"`
	Linked      int             `json:"ligado_sistema"`
}

// FetchPurchases retrieves the full purchase dataset.
func (c *Client) FetchPurchases(ctx context.Context) ([]PurchaseRecord, error) {
	var rows []purchaseRow
	if err := c.getJSON(ctx, "/datos", &rows); err != nil {
		return nil, err
	}
	records := make([]PurchaseRecord, 0, len(rows))
	for _, row := range rows {
		month, err := parseUpstreamDate(row.Month)
		if err != nil {
			return nil, err
		}
		records = append(records, PurchaseRecord{
			Branch:      strings.TrimSpace(row.Branch),
			AccountCode: strings.TrimSpace(row.AccountCode),
			AccountID:   row.AccountID,
			Folio:       row.Folio,
			Amount:      row.Amount,
			PeriodDate:  month,
			Linked:      row.Linked != 0,
		})
	}
	return records, nil
}

type agingRow struct {
	Branch      string          `json:"sucursal"`
	AccountCode string          `json:"codigo_6digitos"`
	DueDate     string          `json:"fecha_exigibilidad"`
	Amount      decimal.Decimal `json:"total"`
}

type statementEnvelope struct {
	Rows   []agingRow `json:"datos"`
	Cutoff string     `json:"fecha_corte"`
}

// AgingRecord is one open payable on the account statement.
type AgingRecord struct {
	Branch      string
	AccountCode string
	DueDate     time.Time
	Amount      decimal.Decimal
}

// Statement is the account statement as of a cutoff date.
type Statement struct {
	Records []AgingRecord
	Cutoff  time.Time
}

// Empty reports whether the statement holds no rows.
func (s Statement) Empty() bool {
	return len(s.Records) == 0
}

// FetchStatement retrieves the open payables and the cutoff date they
// were valid at.
func (c *Client) FetchStatement(ctx context.Context) (Statement, error) {
	var envelope statementEnvelope
	if err := c.getJSON(ctx, "/estado_cuenta", &envelope); err != nil {
		return Statement{}, err
	}
	if len(envelope.Rows) == 0 {
		return Statement{}, nil
	}
	cutoff, err := parseUpstreamDate(envelope.Cutoff)
	if err != nil {
		return Statement{}, err
	}
	statement := Statement{Cutoff: cutoff, Records: make([]AgingRecord, 0, len(envelope.Rows))}
	for _, row := range envelope.Rows {
		due, err := parseUpstreamDate(row.DueDate)
		if err != nil {
			return Statement{}, err
		}
		statement.Records = append(statement.Records, AgingRecord{
			Branch:      strings.TrimSpace(row.Branch),
			AccountCode: strings.TrimSpace(row.AccountCode),
			DueDate:     due,
			Amount:      row.Amount,
		})
	}
	return statement, nil
}

type lastUpdateRow struct {
	Date        string `json:"fecha"`
	Description string `json:"descripcion"`
}

// FetchLastUpdate retrieves when the upstream dataset was last rebuilt.
func (c *Client) FetchLastUpdate(ctx context.Context) (LastUpdate, error) {
	var row lastUpdateRow
	if err := c.getJSON(ctx, "/ultima_actualizacion", &row); err != nil {
		return LastUpdate{}, err
	}
	date, err := parseUpstreamDate(row.Date)
	if err != nil {
		return LastUpdate{}, err
	}
	return LastUpdate{Date: date, Description: row.Description}, nil
}
