package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FilingStatus tracks where a PER/DCOMP filing stands with the tax
// authority.
type FilingStatus string

const (
	StatusPendente  FilingStatus = "PENDENTE"
	StatusEmAnalise FilingStatus = "EM_ANALISE"
	StatusAprovado  FilingStatus = "APROVADO"
	StatusRecusado  FilingStatus = "RECUSADO"
)

// TaxKind identifies the tax a filing refers to. The set below covers the
// common cases; values outside it are accepted as-is since filings in the
// wild carry combined labels such as "PIS/COFINS".
type TaxKind string

const (
	ImpostoIRPJ   TaxKind = "IRPJ"
	ImpostoCSLL   TaxKind = "CSLL"
	ImpostoPIS    TaxKind = "PIS"
	ImpostoCOFINS TaxKind = "COFINS"
	ImpostoIPI    TaxKind = "IPI"
	ImpostoINSS   TaxKind = "INSS"
)

// PerdComp is a tax refund/compensation filing belonging to exactly one
// Client. Amounts are decimal currency values.
type PerdComp struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;index" json:"client_id"`
	Numero          string          `gorm:"size:50" json:"numero"`
	NrPerdcomp      string          `gorm:"size:50" json:"nr_perdcomp"`
	Nome            string          `gorm:"size:255" json:"nome"`
	Imposto         TaxKind         `gorm:"size:30" json:"imposto"`
	Competencia     string          `gorm:"size:50" json:"competencia"`
	ValorSolicitado decimal.Decimal `gorm:"type:decimal(15,2)" json:"valor_solicitado"`
	ValorCompensado decimal.Decimal `gorm:"type:decimal(15,2)" json:"valor_compensado"`
	ValorRecebido   decimal.Decimal `gorm:"type:decimal(15,2)" json:"valor_recebido"`
	ValorSaldo      decimal.Decimal `gorm:"type:decimal(15,2)" json:"valor_saldo"`
	Status          FilingStatus    `gorm:"size:20" json:"status"`
	DataTransmissao *time.Time      `json:"data_transmissao"`
	Observacoes     string          `json:"observacoes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EntityID returns the filing's unique identifier.
func (p *PerdComp) EntityID() uuid.UUID { return p.ID }

// PerdCompUpdate represents the fields that can be updated on a PerdComp.
// Pointer types allow partial updates.
type PerdCompUpdate struct {
	ID              uuid.UUID
	ClientID        *uuid.UUID
	Numero          *string
	NrPerdcomp      *string
	Nome            *string
	Imposto         *TaxKind
	Competencia     *string
	ValorSolicitado *decimal.Decimal
	ValorCompensado *decimal.Decimal
	ValorRecebido   *decimal.Decimal
	ValorSaldo      *decimal.Decimal
	Status          *FilingStatus
	DataTransmissao *time.Time
	Observacoes     *string
}

// EntityID returns the id of the filing being patched.
func (u *PerdCompUpdate) EntityID() uuid.UUID { return u.ID }

// ValidStatus reports whether s is one of the known filing statuses.
func ValidStatus(s FilingStatus) bool {
	switch s {
	case StatusPendente, StatusEmAnalise, StatusAprovado, StatusRecusado:
		return true
	default:
		return false
	}
}
