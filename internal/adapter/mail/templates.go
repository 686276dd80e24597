package mail

type mailTemplate struct {
	subject string
	body    string
}

// Keys match the template names used by the billing usecase.
var templates = map[string]mailTemplate{
	"welcome": {
		subject: "Welkom bij RoboServe — {{.Product}}",
		body: `Welkom bij RoboServe!

U heeft zich aangemeld voor {{.Product}}.

Met vriendelijke groet,
RoboServe`,
	},
	"payment_confirmed": {
		subject: "RoboServe — Betaling bevestigd",
		body: `Beste {{.name}},

Uw {{if eq .tier "unlimited"}}onbeperkt toegang is geactiveerd{{else}}betaling van EUR 0.99 is ontvangen{{end}}.

Met vriendelijke groet,
RoboServe`,
	},
}
