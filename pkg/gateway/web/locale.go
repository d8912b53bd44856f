package web

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const langCookie = "dss_lang"

var supported = []language.Tag{language.BrazilianPortuguese, language.English}

var matcher = language.NewMatcher(supported)

// locale resolves message keys for one request.
type locale struct {
	tag      language.Tag
	messages map[string]string
	printer  *message.Printer
}

func newLocale(tag language.Tag) locale {
	_, idx, _ := matcher.Match(tag)
	base := supported[idx]
	return locale{
		tag:      base,
		messages: catalog[base.String()],
		printer:  message.NewPrinter(base),
	}
}

// T falls back to Portuguese, then to the key itself.
func (l locale) T(key string) string {
	if msg, ok := l.messages[key]; ok {
		return msg
	}
	if msg, ok := catalog[language.BrazilianPortuguese.String()][key]; ok {
		return msg
	}
	return key
}

func (l locale) Code() string {
	return l.tag.String()
}

func (l locale) Decimal(v float64) string {
	return l.printer.Sprintf("%.2f", v)
}

func (l locale) Percent(v float64) string {
	return l.printer.Sprintf("%.1f%%", v*100)
}

// negotiate picks the language from ?lang=, then the language cookie, then
// Accept-Language, then the configured fallback.
func negotiate(r *http.Request, fallback language.Tag) locale {
	if raw := r.URL.Query().Get("lang"); raw != "" {
		if tag, err := language.Parse(raw); err == nil {
			return newLocale(tag)
		}
	}
	if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
		if tag, err := language.Parse(c.Value); err == nil {
			return newLocale(tag)
		}
	}
	if header := strings.TrimSpace(r.Header.Get("Accept-Language")); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return newLocale(supported[idx])
			}
		}
	}
	return newLocale(fallback)
}

var catalog = map[string]map[string]string{
	"pt-BR": {
		"app.title":        "Sistema de Diagnóstico de Obesidade",
		"nav.title":        "Navegação",
		"nav.prompt":       "Selecione a página:",
		"nav.go":           "Ir",
		"page.analytics":   "📊 Painel Analítico",
		"page.diagnostic":  "🩺 Diagnóstico Preditivo",
		"analytics.title":  "📊 Painel Analítico - Estudo sobre Obesidade",
		"analytics.intro":  "Análise exploratória dos dados para auxiliar na tomada de decisão da equipe médica.",
		"diagnostic.title": "🩺 Sistema de Diagnóstico Preditivo",
		"diagnostic.intro": "Insira os dados do paciente abaixo para prever o nível de risco de obesidade.",

		"chart.label_distribution":    "Distribuição dos Níveis de Obesidade",
		"chart.age_weight_by_gender":  "Relação: Idade vs Peso por Gênero",
		"chart.family_history_impact": "Impacto do Histórico Familiar",
		"chart.activity_by_level":     "Frequência de Atividade Física (FAF) vs Obesidade",

		"section.body":      "Dados Corporais e Demográficos",
		"section.eating":    "Hábitos Alimentares",
		"section.lifestyle": "Estilo de Vida e Outros",

		"field.Age":            "Idade (Age)",
		"field.Height":         "Altura em metros (Height)",
		"field.Weight":         "Peso em kg (Weight)",
		"field.Gender":         "Gênero (Gender)",
		"field.family_history": "Histórico Familiar de Sobrepeso?",
		"field.FAVC":           "Consome alimentos muito calóricos? (FAVC)",
		"field.FCVC":           "Frequência de vegetais (FCVC) [1=Raro, 3=Sempre]",
		"field.NCP":            "Refeições principais por dia (NCP) [1 a 4]",
		"field.CAEC":           "Come entre as refeições? (CAEC)",
		"field.CH2O":           "Consumo diário de água (CH2O) [1=<1L, 3=>2L]",
		"field.SCC":            "Monitora calorias diárias? (SCC)",
		"field.SMOKE":          "Fuma? (SMOKE)",
		"field.FAF":            "Frequência de atividade física (FAF) [0=Nenhuma, 3=Alta]",
		"field.TUE":            "Tempo em telas/eletrônicos (TUE) [0=Baixo, 2=Alto]",
		"field.CALC":           "Consumo de Álcool (CALC)",
		"field.MTRANS":         "Meio de Transporte (MTRANS)",

		"form.submit":          "Realizar Diagnóstico",
		"result.success":       "Diagnóstico concluído com sucesso!",
		"result.label":         "🩺 Risco/Nível Previsto",
		"result.imc":           "IMC calculado",
		"result.probabilities": "Probabilidade por classe",
		"error.validation":     "Dados do paciente fora do domínio permitido.",
		"error.schema":         "O conjunto de dados de referência não corresponde ao modelo treinado.",
		"error.bmi":            "Não é possível calcular o IMC com altura zero.",
		"error.prediction":     "Falha ao executar o modelo de diagnóstico.",
		"error.dataset":        "Não foi possível carregar os dados de referência.",
	},
	"en": {
		"app.title":        "Obesity Diagnosis System",
		"nav.title":        "Navigation",
		"nav.prompt":       "Select a page:",
		"nav.go":           "Go",
		"page.analytics":   "📊 Analytics Dashboard",
		"page.diagnostic":  "🩺 Predictive Diagnosis",
		"analytics.title":  "📊 Analytics Dashboard - Obesity Study",
		"analytics.intro":  "Exploratory data analysis to support the medical team's decisions.",
		"diagnostic.title": "🩺 Predictive Diagnosis System",
		"diagnostic.intro": "Enter the patient's data below to predict the obesity risk level.",

		"chart.label_distribution":    "Distribution of Obesity Levels",
		"chart.age_weight_by_gender":  "Age vs Weight by Gender",
		"chart.family_history_impact": "Impact of Family History",
		"chart.activity_by_level":     "Physical Activity Frequency (FAF) vs Obesity",

		"section.body":      "Body and Demographic Data",
		"section.eating":    "Eating Habits",
		"section.lifestyle": "Lifestyle and Other",

		"field.Age":            "Age",
		"field.Height":         "Height in meters",
		"field.Weight":         "Weight in kg",
		"field.Gender":         "Gender",
		"field.family_history": "Family history of overweight?",
		"field.FAVC":           "Frequent high-calorie food? (FAVC)",
		"field.FCVC":           "Vegetable frequency (FCVC) [1=Rarely, 3=Always]",
		"field.NCP":            "Main meals per day (NCP) [1 to 4]",
		"field.CAEC":           "Eats between meals? (CAEC)",
		"field.CH2O":           "Daily water intake (CH2O) [1=<1L, 3=>2L]",
		"field.SCC":            "Monitors daily calories? (SCC)",
		"field.SMOKE":          "Smokes? (SMOKE)",
		"field.FAF":            "Physical activity frequency (FAF) [0=None, 3=High]",
		"field.TUE":            "Screen/device time (TUE) [0=Low, 2=High]",
		"field.CALC":           "Alcohol consumption (CALC)",
		"field.MTRANS":         "Transportation (MTRANS)",

		"form.submit":          "Run Diagnosis",
		"result.success":       "Diagnosis completed successfully!",
		"result.label":         "🩺 Predicted Risk/Level",
		"result.imc":           "Computed BMI",
		"result.probabilities": "Probability per class",
		"error.validation":     "Patient data outside the allowed domain.",
		"error.schema":         "The reference dataset does not match the trained model.",
		"error.bmi":            "BMI cannot be computed with zero height.",
		"error.prediction":     "The diagnosis model failed to run.",
		"error.dataset":        "The reference data could not be loaded.",
	},
}
