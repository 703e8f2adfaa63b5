// Package lookup resolves visitor data from the two upstream lead services.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pix-checkout-api/models"
)

const Timeout = 10 * time.Second

var ErrNotFound = errors.New("customer not found")

type PhoneLookup interface {
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
}

type CPFLookup interface {
	FindByCPF(ctx context.Context, cpf string) (*models.Customer, error)
}

// LeadsClient queries the campaign leads list by phone number.
type LeadsClient struct {
	r *resty.Client
}

func NewLeadsClient(baseURL string) *LeadsClient {
	return &LeadsClient{
		r: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(Timeout).
			SetHeader("Accept", "application/json"),
	}
}

type leadsResponse struct {
	Success bool             `json:"success"`
	Data    *models.Customer `json:"data"`
}

func (c *LeadsClient) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetPathParam("phone", phone).
		Get("/search/{phone}")
	if err != nil {
		return nil, fmt.Errorf("leads lookup failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ErrNotFound
	}

	var body leadsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("leads lookup returned invalid JSON: %w", err)
	}
	if !body.Success || body.Data == nil {
		return nil, ErrNotFound
	}
	return body.Data, nil
}

// CPFClient queries the tax-id data service.
type CPFClient struct {
	r     *resty.Client
	token string
}

func NewCPFClient(baseURL, token string) *CPFClient {
	return &CPFClient{
		r: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(Timeout),
		token: token,
	}
}

type cpfResponse struct {
	Dados *struct {
		Nome           string `json:"nome"`
		DataNascimento string `json:"data_nascimento"`
		NomeMae        string `json:"nome_mae"`
		Sexo           string `json:"sexo"`
	} `json:"DADOS"`
}

// FindByCPF expects the 11 digits of the CPF. The returned customer has no phone;
// this service does not know it.
func (c *CPFClient) FindByCPF(ctx context.Context, cpf string) (*models.Customer, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"token": c.token,
			"cpf":   cpf,
		}).
		Get("/cpf.php")
	if err != nil {
		return nil, fmt.Errorf("cpf lookup failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ErrNotFound
	}

	var body cpfResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("cpf lookup returned invalid JSON: %w", err)
	}
	if body.Dados == nil || body.Dados.Nome == "" {
		return nil, ErrNotFound
	}

	return &models.Customer{
		Nome:           body.Dados.Nome,
		CPF:            cpf,
		DataNascimento: body.Dados.DataNascimento,
		NomeMae:        body.Dados.NomeMae,
		Sexo:           body.Dados.Sexo,
	}, nil
}
