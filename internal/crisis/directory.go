// Package crisis holds the static help-resource directories attached to
// replies flagged as crisis.
package crisis

import (
	"sort"
	"strings"
)

const DefaultRegion = "CO"

type Resource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Hours   string `json:"hours"`
}

type Directory struct {
	Country    string     `json:"country"`
	Disclaimer string     `json:"disclaimer"`
	Items      []Resource `json:"items"`
	Sources    []string   `json:"sources"`
}

var directories = map[string]Directory{
	"CO": {
		Country:    "CO",
		Disclaimer: "Si estás en peligro inmediato, llama a emergencias locales. Estos recursos son confidenciales y gratuitos según el operador indicado.",
		Items: []Resource{
			{Name: "Línea de la Vida (nacional)", Contact: "(605) 339 9999", Hours: "24/7"},
			{Name: "Línea de Salud Mental Distrital (Barranquilla)", Contact: "315 300 2003", Hours: "24/7"},
			{Name: "Línea Charlemos (WhatsApp)", Contact: "318 804 4000", Hours: "24/7"},
			{Name: "Línea 106 Bogotá (y WhatsApp)", Contact: "106 / 300 754 8933", Hours: "24/7"},
			{Name: "Línea Púrpura (violencia contra mujeres)", Contact: "018000 112 137 / WhatsApp 300 755 1846 / ipurpura@sdmujer.gov.co", Hours: "24/7"},
			{Name: "Línea Psicoactiva (Bogotá) – Prevención consumo de SPA", Contact: "01 8000 112 439", Hours: "Horarios institucionales"},
			{Name: "Línea de Apoyo Emocional (Policía Nacional)", Contact: "018000‑910588 (Subsistema de Salud)", Hours: "24/7"},
			{Name: "Meta – Línea Amiga", Contact: "312 575 1135", Hours: "Todos los días, 9 a.m. – 9 p.m."},
		},
		Sources: []string{"iasp.info", "Ministerio de Salud", "Bogotá.gov.co", "Policía Nacional de Colombia"},
	},
}

// Lookup returns a copy of the directory for region, falling back to the
// default region for unknown codes.
func Lookup(region string) Directory {
	dir, ok := directories[strings.ToUpper(strings.TrimSpace(region))]
	if !ok {
		dir = directories[DefaultRegion]
	}
	return Directory{
		Country:    dir.Country,
		Disclaimer: dir.Disclaimer,
		Items:      append([]Resource(nil), dir.Items...),
		Sources:    append([]string(nil), dir.Sources...),
	}
}

func Has(region string) bool {
	_, ok := directories[strings.ToUpper(strings.TrimSpace(region))]
	return ok
}

func Regions() []string {
	codes := make([]string, 0, len(directories))
	for code := range directories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
