package usecase

import (
	"fmt"

	"productcopy-core/internal/domain/entity"
)

const productHeaderFormat = `Productnaam: %s
Productkenmerken: %s
Doelgroep: %s
Tone-of-voice: %s`

func productHeader(r entity.GenerationRequest) string {
	return fmt.Sprintf(productHeaderFormat, r.ProductName, r.ProductFeatures, r.TargetAudience, r.Tone)
}

func buildDescriptionPrompt(r entity.GenerationRequest) string {
	return `Je bent een expert copywriter gespecialiseerd in het schrijven van overtuigende productbeschrijvingen.

` + productHeader(r) + `

Schrijf een gedetailleerde en wervende productbeschrijving die de kernwaarden en voordelen benadrukt voor de opgegeven doelgroep en tone-of-voice. De beschrijving moet tussen de 150 en 250 woorden zijn.

BELANGRIJK: Gebruik GEEN markdown opmaak. Geen sterretjes, geen hashes, geen underscores voor opmaak. Alleen platte tekst met alinea's.

Geef ALLEEN de productbeschrijving terug, zonder extra tekst of aanhalingstekens.`
}

// improvePromptIntro marks improvement prompts; the first round never uses it.
const improvePromptIntro = "Je bent een expert copywriter. Verbeter de volgende productbeschrijving op basis van de feedback."

func buildImprovePrompt(r entity.GenerationRequest, draft entity.Draft, feedback string) string {
	return improvePromptIntro + `

` + productHeader(r) + `

Huidige beschrijving: ` + string(draft) + `
Feedback: ` + feedback + `

Schrijf een verbeterde versie (150-250 woorden).
BELANGRIJK: Gebruik GEEN markdown opmaak. Alleen platte tekst.

Geef ALLEEN de nieuwe tekst terug, zonder extra tekst of aanhalingstekens.`
}

func buildQualityPrompt(r entity.GenerationRequest, draft entity.Draft) string {
	return `Je bent een kritische kwaliteitsbeoordelaar voor marketingteksten.

` + productHeader(r) + `

Gegenereerde tekst: ` + string(draft) + `

Beoordeel op relevantie, kwaliteit, tone-of-voice consistentie en effectiviteit.

Geef je antwoord EXACT in dit formaat:
` + scoreMarker + ` [getal 1-10]
` + feedbackMarker + ` [één zin met concrete verbeterpunten]`
}

func buildTitlePrompt(r entity.GenerationRequest, draft entity.Draft) string {
	return `Je bent een expert SEO specialist.

` + productHeader(r) + `
Productbeschrijving: ` + string(draft) + `

Schrijf EEN SEO-titel (max 60 tekens) die relevante zoekwoorden bevat en aantrekkelijk is voor de doelgroep.

BELANGRIJK: Geen markdown opmaak. Alleen platte tekst.

Geef ALLEEN de SEO-titel terug, zonder extra tekst of aanhalingstekens.`
}

func buildMetaPrompt(r entity.GenerationRequest, draft entity.Draft, title string) string {
	return `Je bent een expert SEO specialist.

` + productHeader(r) + `
Productbeschrijving: ` + string(draft) + `
SEO Titel: ` + title + `

Schrijf EEN SEO meta-beschrijving (max 160 tekens) die gebruikers aanmoedigt om te klikken.

BELANGRIJK: Geen markdown opmaak. Alleen platte tekst.

Geef ALLEEN de SEO meta-beschrijving terug, zonder extra tekst of aanhalingstekens.`
}
