package classifier

// Category labels. The set is closed: Classify never returns anything else.
const (
	Saude             = "Saúde"
	Educacao          = "Educação"
	Obras             = "Obras"
	AssistenciaSocial = "Assistência Social"
	Seguranca         = "Segurança"
	Transporte        = "Transporte"
	Cultura           = "Cultura"
	Esporte           = "Esporte"
	MeioAmbiente      = "Meio Ambiente"
	Turismo           = "Turismo"
	Administracao     = "Administração"
	Legislativo       = "Legislativo"
	Tecnologia        = "Tecnologia"
	Saneamento        = "Saneamento"

	// Geral is the default bucket for text no rule matches.
	Geral = "Geral"
)

// Rule maps a keyword set to a category. Keywords are upper case substrings.
type Rule struct {
	Category string
	Keywords []string
}

// rules is evaluated top to bottom and the first rule with any keyword present wins.
// Domain areas come before generic administrative terms; keep the order.
var rules = []Rule{
	{Saude, []string{"SAUDE", "SAÚDE", "MEDIC", "HOSPITAL", "FARMAC"}},
	{Educacao, []string{"EDUCACAO", "EDUCAÇÃO", "ESCOLA", "CRECHE", "ENSINO", "PEDAGOG", "MERENDA"}},
	{Obras, []string{"OBRAS", "CONSTRUCO", "CONSTRUÇÃO", "CONSTRUTORA", "REFORMA", "PAVIMENT", "ASFALT", "SINALIZAC"}},
	{AssistenciaSocial, []string{"ASSISTENCIA", "ASSISTÊNCIA", "SOCIAL", "SOLIDARI", "POBREZA"}},
	{Seguranca, []string{"SEGURANCA", "SEGURANÇA", "GUARDA", "POLIC", "VIGILANC"}},
	{Transporte, []string{"TRANSPORTE", "ONIBUS", "ÔNIBUS", "TRANSITO", "TRÂNSITO", "VEICULO", "FROTA", "COMBUSTIVEL", "PNEU"}},
	{Cultura, []string{"CULTURA", "SHOW", "TEATRO", "MUSICA", "MUSEU", "BIBLIOTECA"}},
	{Esporte, []string{"ESPORTE", "LAZER", "ESTADIO", "GINASIO"}},
	{MeioAmbiente, []string{"MEIO AMBIENTE", "ECOLOGIA", "VERDE", "LIMPEZA URBANA", "LIXO", "VARRICAO", "VARRECAO"}},
	{Turismo, []string{"TURISMO", "VIAGENS"}},
	{Administracao, []string{"ADMINISTRACAO", "ADMINISTRAÇÃO", "PREVIDENCIA", "IPREM", "FOLHA", "SALARIO", "PROVENTOS"}},
	{Legislativo, []string{"REPRESENTATIVO", "PARLAMENTAR", "CAMARA", "VEREADOR"}},
	{Tecnologia, []string{" TI ", "TECNOLOGIA", "SOFTWARE", "INFORMATICA"}},
	{Saneamento, []string{"AGUA", "ESGOTO", "SEMAE", "SANEAMENTO"}},
	{Administracao, []string{"PESSOAL", "VENCIMENTOS", "ENCARGOS", "FOLHA DE PAG"}},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
