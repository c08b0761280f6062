// Package tryton implementa el puerto ports.Backend sobre el API JSON-RPC de Tryton.
//
// Cada llamada es un POST a {url}/{database}/ con el cuerpo
//
//	{"id": <n>, "method": "model.<modelo>.<método>", "params": [...]}
//
// y la respuesta trae "result" o "error". Un error de Tryton es un arreglo
// [<tipo>, <argumentos>]; para UserError los argumentos son [mensaje, descripción].
package tryton

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa los puertos.
var (
	_ ports.Backend   = (*Client)(nil)
	_ ports.Connector = (*Client)(nil)
)

const maxResponseBytes = 4 << 20

// Config acceso al servidor.
type Config struct {
	URL      string
	Database string
	Timeout  time.Duration
}

// Client adaptador JSON-RPC. Sin credenciales solo puede hacer Login;
// Connect devuelve una copia atada a la sesión del usuario.
type Client struct {
	url        string
	httpClient *http.Client
	cred       *ports.Credentials
	seq        *atomic.Int64
}

// NewClient construye el adaptador.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        cfg.URL + "/" + cfg.Database + "/",
		httpClient: &http.Client{Timeout: timeout},
		seq:        new(atomic.Int64),
	}
}

// ── Protocolo ─────────────────────────────────────────────────────────────────

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// ── Connector ─────────────────────────────────────────────────────────────────

// Login abre una sesión con common.db.login. El servidor responde [user_id, session].
func (c *Client) Login(ctx context.Context, login, password string) (ports.Credentials, error) {
	raw, err := c.do(ctx, "common.db.login", []any{login, map[string]string{"password": password}, ""})
	if err != nil {
		return ports.Credentials{}, err
	}
	var pair []any
	if err := decode(raw, &pair); err != nil || len(pair) < 2 {
		return ports.Credentials{}, fmt.Errorf("tryton: respuesta de login inesperada: %s", string(raw))
	}
	userID, err := toInt64(pair[0])
	if err != nil {
		return ports.Credentials{}, fmt.Errorf("tryton: user_id de login: %w", err)
	}
	session, _ := pair[1].(string)
	return ports.Credentials{UserID: userID, Login: login, Session: session}, nil
}

// Connect devuelve un cliente que firma las llamadas con cred.
func (c *Client) Connect(cred ports.Credentials) ports.Backend {
	cp := *c
	cp.cred = &cred
	return &cp
}

// ── Backend ───────────────────────────────────────────────────────────────────

// Search usa search_read: params [domain, offset, limit, order, fields, context].
func (c *Client) Search(ctx context.Context, req ports.SearchRequest) ([]ports.Row, error) {
	domainArg := req.Domain
	if domainArg == nil {
		domainArg = []ports.Clause{}
	}
	var limit any
	if req.Limit > 0 {
		limit = req.Limit
	}
	var order any
	if len(req.Order) > 0 {
		order = req.Order
	}
	raw, err := c.do(ctx, "model."+req.Model+".search_read",
		[]any{domainArg, req.Offset, limit, order, req.Fields, map[string]any{}})
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := decode(raw, &records); err != nil {
		return nil, fmt.Errorf("tryton: decodificar %s: %w", req.Model, err)
	}
	rows := make([]ports.Row, len(records))
	for i, r := range records {
		rows[i] = ports.Row(r)
	}
	return rows, nil
}

// Write usa write: params [[id], values, context].
func (c *Client) Write(ctx context.Context, model string, id int64, patch map[string]any) error {
	_, err := c.do(ctx, "model."+model+".write", []any{[]int64{id}, patch, map[string]any{}})
	return err
}

// Call invoca una acción con nombre completo (ej. model.stock.shipment.internal.wait)
// con params [ids, context] y devuelve el resultado decodificado.
func (c *Client) Call(ctx context.Context, action string, ids []int64) (any, error) {
	raw, err := c.do(ctx, action, []any{ids, map[string]any{}})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var result any
	if err := decode(raw, &result); err != nil {
		return nil, fmt.Errorf("tryton: decodificar resultado de %s: %w", action, err)
	}
	return result, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	payload := rpcRequest{ID: c.seq.Add(1), Method: method, Params: params}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tryton: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tryton: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cred != nil {
		token := c.cred.Login + ":" + strconv.FormatInt(c.cred.UserID, 10) + ":" + c.cred.Session
		req.Header.Set("Authorization", "Session "+base64.StdEncoding.EncodeToString([]byte(token)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.RemoteError{Kind: domain.RemoteKindTransport, Messages: []string{ctx.Err().Error()}}
		}
		return nil, &domain.RemoteError{Kind: domain.RemoteKindTransport, Messages: []string{err.Error()}}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.RemoteError{Kind: domain.RemoteKindTransport, Messages: []string{err.Error()}}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &domain.RemoteError{Kind: domain.RemoteKindNotLogged, Messages: []string{http.StatusText(resp.StatusCode)}}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteError{
			Kind:     domain.RemoteKindTransport,
			Messages: []string{fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(rawBody), 200))},
		}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(rawBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("tryton: deserializar respuesta: %w", err)
	}
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		return nil, parseRemoteError(rpcResp.Error)
	}
	return rpcResp.Result, nil
}

// parseRemoteError convierte el campo "error" de Tryton en *domain.RemoteError.
// Formas aceptadas: ["UserError", ["msg", "desc"]], ["UserError", "msg"], "texto".
func parseRemoteError(raw json.RawMessage) *domain.RemoteError {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
		var text string
		if json.Unmarshal(raw, &text) == nil {
			return &domain.RemoteError{Kind: text, Messages: []string{text}}
		}
		return &domain.RemoteError{Kind: "unknown", Messages: []string{string(raw)}}
	}
	re := &domain.RemoteError{}
	_ = json.Unmarshal(parts[0], &re.Kind)
	if len(parts) < 2 {
		return re
	}
	var args []any
	if err := json.Unmarshal(parts[1], &args); err != nil {
		var text string
		if json.Unmarshal(parts[1], &text) == nil {
			re.Messages = []string{text}
		}
		return re
	}
	for _, a := range args {
		if s, ok := a.(string); ok && s != "" {
			re.Messages = append(re.Messages, s)
		}
	}
	return re
}

func decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	}
	return 0, fmt.Errorf("valor no numérico: %v", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
