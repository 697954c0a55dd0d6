package db

import (
	"strings"

	"github.com/rdmelo/perdesk/internal/dashboard/models"
)

func lower(s string) string {
	return strings.ToLower(s)
}

// clientPatchValues flattens a partial update into a column map so GORM
// only touches the fields the caller actually set.
func clientPatchValues(patch *models.ClientUpdate) map[string]interface{} {
	values := map[string]interface{}{}
	if patch.CNPJ != nil {
		values["cnpj"] = *patch.CNPJ
	}
	if patch.RazaoSocial != nil {
		values["razao_social"] = *patch.RazaoSocial
	}
	if patch.NomeFantasia != nil {
		values["nome_fantasia"] = *patch.NomeFantasia
	}
	if patch.TipoEmpresa != nil {
		values["tipo_empresa"] = *patch.TipoEmpresa
	}
	if patch.RegimeTributario != nil {
		values["regime_tributario"] = *patch.RegimeTributario
	}
	if patch.QuadroSocietario != nil {
		values["quadro_societario"] = *patch.QuadroSocietario
	}
	if patch.Cargo != nil {
		values["cargo"] = *patch.Cargo
	}
	if patch.TelefoneContato != nil {
		values["telefone_contato"] = *patch.TelefoneContato
	}
	if patch.EmailContato != nil {
		values["email_contato"] = *patch.EmailContato
	}
	if patch.ResponsavelFinanceiro != nil {
		values["responsavel_financeiro"] = *patch.ResponsavelFinanceiro
	}
	if patch.TelefoneComercial != nil {
		values["telefone_comercial"] = *patch.TelefoneComercial
	}
	if patch.EmailComercial != nil {
		values["email_comercial"] = *patch.EmailComercial
	}
	if patch.Site != nil {
		values["site"] = *patch.Site
	}
	if patch.CNAE != nil {
		values["cnae"] = *patch.CNAE
	}
	if patch.RecuperacaoJudicial != nil {
		values["recuperacao_judicial"] = *patch.RecuperacaoJudicial
	}
	if patch.Logradouro != nil {
		values["logradouro"] = *patch.Logradouro
	}
	if patch.Numero != nil {
		values["numero"] = *patch.Numero
	}
	if patch.Complemento != nil {
		values["complemento"] = *patch.Complemento
	}
	if patch.Bairro != nil {
		values["bairro"] = *patch.Bairro
	}
	if patch.Municipio != nil {
		values["municipio"] = *patch.Municipio
	}
	if patch.UF != nil {
		values["uf"] = *patch.UF
	}
	if patch.CEP != nil {
		values["cep"] = *patch.CEP
	}
	if patch.Atividades != nil {
		values["atividades"] = *patch.Atividades
	}
	if patch.AnotacoesAnteriores != nil {
		values["anotacoes_anteriores"] = *patch.AnotacoesAnteriores
	}
	if patch.NovaAnotacao != nil {
		values["nova_anotacao"] = *patch.NovaAnotacao
	}
	return values
}

func perdcompPatchValues(patch *models.PerdCompUpdate) map[string]interface{} {
	values := map[string]interface{}{}
	if patch.ClientID != nil {
		values["client_id"] = *patch.ClientID
	}
	if patch.Numero != nil {
		values["numero"] = *patch.Numero
	}
	if patch.NrPerdcomp != nil {
		values["nr_perdcomp"] = *patch.NrPerdcomp
	}
	if patch.Nome != nil {
		values["nome"] = *patch.Nome
	}
	if patch.Imposto != nil {
		values["imposto"] = *patch.Imposto
	}
	if patch.Competencia != nil {
		values["competencia"] = *patch.Competencia
	}
	if patch.ValorSolicitado != nil {
		values["valor_solicitado"] = *patch.ValorSolicitado
	}
	if patch.ValorCompensado != nil {
		values["valor_compensado"] = *patch.ValorCompensado
	}
	if patch.ValorRecebido != nil {
		values["valor_recebido"] = *patch.ValorRecebido
	}
	if patch.ValorSaldo != nil {
		values["valor_saldo"] = *patch.ValorSaldo
	}
	if patch.Status != nil {
		values["status"] = *patch.Status
	}
	if patch.DataTransmissao != nil {
		values["data_transmissao"] = *patch.DataTransmissao
	}
	if patch.Observacoes != nil {
		values["observacoes"] = *patch.Observacoes
	}
	return values
}
