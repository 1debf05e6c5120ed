package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
)

type saleDTO struct {
	ID             string    `json:"_id,omitempty"`
	Cliente        string    `json:"cliente"`
	Data           string    `json:"data"`
	Valor          amount    `json:"valor"`
	FormaPagamento string    `json:"formaPagamento"`
	Status         string    `json:"status,omitempty"`
	Observacoes    string    `json:"observacoes"`
	Itens          []itemDTO `json:"itens"`
}

type itemDTO struct {
	Produto    productRef `json:"produto"`
	Quantidade int        `json:"quantidade"`
	Preco      amount     `json:"preco"`
}

// productRef is either a bare product id or a populated product document
type productRef struct {
	ID   string
	Name string
}

func (r *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			ID   string `json:"_id"`
			Nome string `json:"nome"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		r.ID, r.Name = doc.ID, doc.Nome
		return nil
	}
	if isEmptyJSON(data) {
		return nil
	}
	return json.Unmarshal(data, &r.ID)
}

func (r productRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (c *Client) saleFromDTO(d saleDTO) domain.Sale {
	s := domain.Sale{
		ID:            d.ID,
		Date:          c.parseDate(d.Data, "sale", d.ID),
		Amount:        d.Valor.Decimal,
		Payer:         d.Cliente,
		PaymentMethod: domain.PaymentMethod(d.FormaPagamento),
		Status:        domain.SaleStatus(d.Status),
		Notes:         d.Observacoes,
		Items:         make([]domain.LineItem, 0, len(d.Itens)),
	}
	for _, item := range d.Itens {
		s.Items = append(s.Items, domain.LineItem{
			ProductID: item.Produto.ID,
			Quantity:  item.Quantidade,
			UnitPrice: item.Preco.Decimal,
		})
	}
	return s
}

func saleToDTO(s *domain.Sale) saleDTO {
	d := saleDTO{
		Cliente:        s.Payer,
		Data:           formatDate(s.Date),
		Valor:          amount{s.Amount},
		FormaPagamento: string(s.PaymentMethod),
		Status:         string(s.Status),
		Observacoes:    s.Notes,
		Itens:          make([]itemDTO, 0, len(s.Items)),
	}
	for _, item := range s.Items {
		d.Itens = append(d.Itens, itemDTO{
			Produto:    productRef{ID: item.ProductID},
			Quantidade: item.Quantity,
			Preco:      amount{item.UnitPrice},
		})
	}
	return d
}

// saleQuery encodes the filter for servers that can narrow the list themselves.
// Callers still apply the filter locally.
func saleQuery(f *domain.SaleFilter) url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.DateFrom != nil {
		q.Set("dataInicio", formatDate(*f.DateFrom))
	}
	if f.DateTo != nil {
		q.Set("dataFim", formatDate(*f.DateTo))
	}
	if f.PayerContains != "" {
		q.Set("cliente", f.PayerContains)
	}
	if f.PaymentMethod != "" {
		q.Set("formaPagamento", string(f.PaymentMethod))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.MinAmount != nil {
		q.Set("valorMin", f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		q.Set("valorMax", f.MaxAmount.String())
	}
	return q
}

// ListSales fetches GET /vendas
func (c *Client) ListSales(ctx context.Context, token string, filter *domain.SaleFilter) ([]domain.Sale, error) {
	var dtos []saleDTO
	if err := c.do(ctx, http.MethodGet, "/vendas", saleQuery(filter), token, nil, &dtos); err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(dtos))
	for _, d := range dtos {
		sales = append(sales, c.saleFromDTO(d))
	}
	return sales, nil
}

// CreateSale posts to /vendas
func (c *Client) CreateSale(ctx context.Context, token string, sale *domain.Sale) (*domain.Sale, error) {
	var out saleDTO
	if err := c.do(ctx, http.MethodPost, "/vendas", nil, token, saleToDTO(sale), &out); err != nil {
		return nil, err
	}
	created := c.saleFromDTO(out)
	return &created, nil
}

// UpdateSale puts to /vendas/{id}
func (c *Client) UpdateSale(ctx context.Context, token string, id string, sale *domain.Sale) (*domain.Sale, error) {
	var out saleDTO
	if err := c.do(ctx, http.MethodPut, pathf("/vendas/%s", id), nil, token, saleToDTO(sale), &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	updated := c.saleFromDTO(out)
	return &updated, nil
}

// DeleteSale deletes /vendas/{id}
func (c *Client) DeleteSale(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/vendas/%s", id), nil, token, nil, nil)
}
