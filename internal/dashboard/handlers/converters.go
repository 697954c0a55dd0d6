package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// listResponse is the envelope returned by every listing endpoint.
type listResponse struct {
	Results    interface{} `json:"results"`
	Count      int64       `json:"count"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Mode       string      `json:"mode"`
}

type clientRequest struct {
	CNPJ                  string `json:"cnpj" binding:"required,cnpj"`
	RazaoSocial           string `json:"razao_social" binding:"required,max=255"`
	NomeFantasia          string `json:"nome_fantasia" binding:"required,max=255"`
	TipoEmpresa           string `json:"tipo_empresa" binding:"required"`
	RegimeTributario      string `json:"regime_tributario"`
	QuadroSocietario      string `json:"quadro_societario"`
	Cargo                 string `json:"cargo"`
	TelefoneContato       string `json:"telefone_contato"`
	EmailContato          string `json:"email_contato" binding:"omitempty,email"`
	ResponsavelFinanceiro string `json:"responsavel_financeiro"`
	TelefoneComercial     string `json:"telefone_comercial"`
	EmailComercial        string `json:"email_comercial" binding:"omitempty,email"`
	Site                  string `json:"site"`
	CNAE                  string `json:"cnae"`
	RecuperacaoJudicial   bool   `json:"recuperacao_judicial"`
	Logradouro            string `json:"logradouro"`
	Numero                string `json:"numero"`
	Complemento           string `json:"complemento"`
	Bairro                string `json:"bairro"`
	Municipio             string `json:"municipio"`
	UF                    string `json:"uf" binding:"omitempty,len=2"`
	CEP                   string `json:"cep"`
	Atividades            string `json:"atividades"`
	AnotacoesAnteriores   string `json:"anotacoes_anteriores"`
	NovaAnotacao          string `json:"nova_anotacao"`
}

func (r *clientRequest) toModel() *models.Client {
	return &models.Client{
		CNPJ:                  r.CNPJ,
		RazaoSocial:           r.RazaoSocial,
		NomeFantasia:          r.NomeFantasia,
		TipoEmpresa:           models.CompanyType(r.TipoEmpresa),
		RegimeTributario:      models.TaxRegime(r.RegimeTributario),
		QuadroSocietario:      r.QuadroSocietario,
		Cargo:                 r.Cargo,
		TelefoneContato:       r.TelefoneContato,
		EmailContato:          r.EmailContato,
		ResponsavelFinanceiro: r.ResponsavelFinanceiro,
		TelefoneComercial:     r.TelefoneComercial,
		EmailComercial:        r.EmailComercial,
		Site:                  r.Site,
		CNAE:                  r.CNAE,
		RecuperacaoJudicial:   r.RecuperacaoJudicial,
		Logradouro:            r.Logradouro,
		Numero:                r.Numero,
		Complemento:           r.Complemento,
		Bairro:                r.Bairro,
		Municipio:             r.Municipio,
		UF:                    r.UF,
		CEP:                   r.CEP,
		Atividades:            r.Atividades,
		AnotacoesAnteriores:   r.AnotacoesAnteriores,
		NovaAnotacao:          r.NovaAnotacao,
	}
}

type clientUpdateRequest struct {
	CNPJ                  *string `json:"cnpj" binding:"omitempty,cnpj"`
	RazaoSocial           *string `json:"razao_social" binding:"omitempty,max=255"`
	NomeFantasia          *string `json:"nome_fantasia" binding:"omitempty,max=255"`
	TipoEmpresa           *string `json:"tipo_empresa"`
	RegimeTributario      *string `json:"regime_tributario"`
	QuadroSocietario      *string `json:"quadro_societario"`
	Cargo                 *string `json:"cargo"`
	TelefoneContato       *string `json:"telefone_contato"`
	EmailContato          *string `json:"email_contato" binding:"omitempty,email"`
	ResponsavelFinanceiro *string `json:"responsavel_financeiro"`
	TelefoneComercial     *string `json:"telefone_comercial"`
	EmailComercial        *string `json:"email_comercial" binding:"omitempty,email"`
	Site                  *string `json:"site"`
	CNAE                  *string `json:"cnae"`
	RecuperacaoJudicial   *bool   `json:"recuperacao_judicial"`
	Logradouro            *string `json:"logradouro"`
	Numero                *string `json:"numero"`
	Complemento           *string `json:"complemento"`
	Bairro                *string `json:"bairro"`
	Municipio             *string `json:"municipio"`
	UF                    *string `json:"uf" binding:"omitempty,len=2"`
	CEP                   *string `json:"cep"`
	Atividades            *string `json:"atividades"`
	AnotacoesAnteriores   *string `json:"anotacoes_anteriores"`
	NovaAnotacao          *string `json:"nova_anotacao"`
}

func (r *clientUpdateRequest) toModel(id uuid.UUID) *models.ClientUpdate {
	update := &models.ClientUpdate{
		ID:                    id,
		CNPJ:                  r.CNPJ,
		RazaoSocial:           r.RazaoSocial,
		NomeFantasia:          r.NomeFantasia,
		QuadroSocietario:      r.QuadroSocietario,
		Cargo:                 r.Cargo,
		TelefoneContato:       r.TelefoneContato,
		EmailContato:          r.EmailContato,
		ResponsavelFinanceiro: r.ResponsavelFinanceiro,
		TelefoneComercial:     r.TelefoneComercial,
		EmailComercial:        r.EmailComercial,
		Site:                  r.Site,
		CNAE:                  r.CNAE,
		RecuperacaoJudicial:   r.RecuperacaoJudicial,
		Logradouro:            r.Logradouro,
		Numero:                r.Numero,
		Complemento:           r.Complemento,
		Bairro:                r.Bairro,
		Municipio:             r.Municipio,
		UF:                    r.UF,
		CEP:                   r.CEP,
		Atividades:            r.Atividades,
		AnotacoesAnteriores:   r.AnotacoesAnteriores,
		NovaAnotacao:          r.NovaAnotacao,
	}
	if r.TipoEmpresa != nil {
		tipo := models.CompanyType(*r.TipoEmpresa)
		update.TipoEmpresa = &tipo
	}
	if r.RegimeTributario != nil {
		regime := models.TaxRegime(*r.RegimeTributario)
		update.RegimeTributario = &regime
	}
	return update
}

type perdcompRequest struct {
	ClientID        string          `json:"client_id" binding:"required,uuid"`
	Numero          string          `json:"numero" binding:"required,max=50"`
	NrPerdcomp      string          `json:"nr_perdcomp" binding:"omitempty,max=50"`
	Nome            string          `json:"nome" binding:"omitempty,max=255"`
	Imposto         string          `json:"imposto" binding:"required,max=30"`
	Competencia     string          `json:"competencia" binding:"required,max=50"`
	ValorSolicitado decimal.Decimal `json:"valor_solicitado"`
	ValorCompensado decimal.Decimal `json:"valor_compensado"`
	ValorRecebido   decimal.Decimal `json:"valor_recebido"`
	ValorSaldo      decimal.Decimal `json:"valor_saldo"`
	Status          string          `json:"status"`
	DataTransmissao *string         `json:"data_transmissao"`
	Observacoes     string          `json:"observacoes"`
}

func (r *perdcompRequest) toModel() (*models.PerdComp, error) {
	clientID, err := uuid.Parse(r.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", e.ErrInvalidInput)
	}
	filing := &models.PerdComp{
		ClientID:        clientID,
		Numero:          r.Numero,
		NrPerdcomp:      r.NrPerdcomp,
		Nome:            r.Nome,
		Imposto:         models.TaxKind(r.Imposto),
		Competencia:     r.Competencia,
		ValorSolicitado: r.ValorSolicitado,
		ValorCompensado: r.ValorCompensado,
		ValorRecebido:   r.ValorRecebido,
		ValorSaldo:      r.ValorSaldo,
		Status:          models.FilingStatus(r.Status),
		Observacoes:     r.Observacoes,
	}
	if r.DataTransmissao != nil && *r.DataTransmissao != "" {
		t, err := time.Parse(dateLayout, *r.DataTransmissao)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid data_transmissao", e.ErrInvalidInput)
		}
		filing.DataTransmissao = &t
	}
	return filing, nil
}

type perdcompUpdateRequest struct {
	ClientID        *string          `json:"client_id" binding:"omitempty,uuid"`
	Numero          *string          `json:"numero" binding:"omitempty,max=50"`
	NrPerdcomp      *string          `json:"nr_perdcomp" binding:"omitempty,max=50"`
	Nome            *string          `json:"nome" binding:"omitempty,max=255"`
	Imposto         *string          `json:"imposto" binding:"omitempty,max=30"`
	Competencia     *string          `json:"competencia" binding:"omitempty,max=50"`
	ValorSolicitado *decimal.Decimal `json:"valor_solicitado"`
	ValorCompensado *decimal.Decimal `json:"valor_compensado"`
	ValorRecebido   *decimal.Decimal `json:"valor_recebido"`
	ValorSaldo      *decimal.Decimal `json:"valor_saldo"`
	Status          *string          `json:"status"`
	DataTransmissao *string          `json:"data_transmissao"`
	Observacoes     *string          `json:"observacoes"`
}

func (r *perdcompUpdateRequest) toModel(id uuid.UUID) (*models.PerdCompUpdate, error) {
	update := &models.PerdCompUpdate{
		ID:              id,
		Numero:          r.Numero,
		NrPerdcomp:      r.NrPerdcomp,
		Nome:            r.Nome,
		Competencia:     r.Competencia,
		ValorSolicitado: r.ValorSolicitado,
		ValorCompensado: r.ValorCompensado,
		ValorRecebido:   r.ValorRecebido,
		ValorSaldo:      r.ValorSaldo,
		Observacoes:     r.Observacoes,
	}
	if r.ClientID != nil {
		clientID, err := uuid.Parse(*r.ClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid client_id", e.ErrInvalidInput)
		}
		update.ClientID = &clientID
	}
	if r.Imposto != nil {
		imposto := models.TaxKind(*r.Imposto)
		update.Imposto = &imposto
	}
	if r.Status != nil {
		status := models.FilingStatus(*r.Status)
		update.Status = &status
	}
	if r.DataTransmissao != nil {
		if *r.DataTransmissao == "" {
			update.DataTransmissao = nil
		} else {
			t, err := time.Parse(dateLayout, *r.DataTransmissao)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid data_transmissao", e.ErrInvalidInput)
			}
			update.DataTransmissao = &t
		}
	}
	return update, nil
}

// parseID extracts the :id path parameter as a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// mapServiceError maps domain or gateway errors to HTTP status codes.
func mapServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrDuplicateCNPJ):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logger.Error("Internal server error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
