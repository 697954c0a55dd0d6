// Package models defines the domain entities tracked by the dashboard:
// clients (companies), their PER/DCOMP filings and the activity log.
// The structs double as GORM models; there is no parallel persistence
// schema.
package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyType represents the legal form of a client company.
type CompanyType string

const (
	TipoMEI    CompanyType = "MEI"
	TipoLTDA   CompanyType = "LTDA"
	TipoSA     CompanyType = "SA"
	TipoEIRELI CompanyType = "EIRELI"
)

// TaxRegime represents the tax regime a client is enrolled in.
type TaxRegime string

const (
	RegimeSimplesNacional TaxRegime = "SIMPLES_NACIONAL"
	RegimeLucroPresumido  TaxRegime = "LUCRO_PRESUMIDO"
	RegimeLucroReal       TaxRegime = "LUCRO_REAL"
)

// Client is a company whose filings are managed through the dashboard.
// CNPJ is the business key and must be unique.
type Client struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CNPJ                  string      `gorm:"size:14;uniqueIndex" json:"cnpj"`
	RazaoSocial           string      `gorm:"size:255" json:"razao_social"`
	NomeFantasia          string      `gorm:"size:255" json:"nome_fantasia"`
	TipoEmpresa           CompanyType `gorm:"size:20" json:"tipo_empresa"`
	RegimeTributario      TaxRegime   `gorm:"size:30" json:"regime_tributario"`
	QuadroSocietario      string      `json:"quadro_societario"`
	Cargo                 string      `json:"cargo"`
	TelefoneContato       string      `json:"telefone_contato"`
	EmailContato          string      `json:"email_contato"`
	ResponsavelFinanceiro string      `json:"responsavel_financeiro"`
	TelefoneComercial     string      `json:"telefone_comercial"`
	EmailComercial        string      `json:"email_comercial"`
	Site                  string      `json:"site"`
	CNAE                  string      `json:"cnae"`
	RecuperacaoJudicial   bool        `json:"recuperacao_judicial"`
	Logradouro            string      `json:"logradouro"`
	Numero                string      `json:"numero"`
	Complemento           string      `json:"complemento"`
	Bairro                string      `json:"bairro"`
	Municipio             string      `json:"municipio"`
	UF                    string      `gorm:"size:2" json:"uf"`
	CEP                   string      `gorm:"size:9" json:"cep"`
	Atividades            string      `json:"atividades"`
	AnotacoesAnteriores   string      `json:"anotacoes_anteriores"`
	NovaAnotacao          string      `json:"nova_anotacao"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// EntityID returns the client's unique identifier.
func (c *Client) EntityID() uuid.UUID { return c.ID }

// DisplayName is the name used when referencing the client in audit events.
func (c *Client) DisplayName() string {
	if c.NomeFantasia != "" {
		return c.NomeFantasia
	}
	return c.RazaoSocial
}

// ClientUpdate represents the fields that can be updated on a Client.
// Pointer types are used to allow partial updates; nil fields are left
// unchanged.
type ClientUpdate struct {
	ID                    uuid.UUID
	CNPJ                  *string
	RazaoSocial           *string
	NomeFantasia          *string
	TipoEmpresa           *CompanyType
	RegimeTributario      *TaxRegime
	QuadroSocietario      *string
	Cargo                 *string
	TelefoneContato       *string
	EmailContato          *string
	ResponsavelFinanceiro *string
	TelefoneComercial     *string
	EmailComercial        *string
	Site                  *string
	CNAE                  *string
	RecuperacaoJudicial   *bool
	Logradouro            *string
	Numero                *string
	Complemento           *string
	Bairro                *string
	Municipio             *string
	UF                    *string
	CEP                   *string
	Atividades            *string
	AnotacoesAnteriores   *string
	NovaAnotacao          *string
}

// EntityID returns the id of the client being patched.
func (u *ClientUpdate) EntityID() uuid.UUID { return u.ID }
