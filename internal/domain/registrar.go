package domain

// Registrar web links shown next to availability and pricing results.
const (
	CheckoutURL = "https://porkbun.com/checkout/search?ref=sl&search=search&q="
	ProductsURL = "https://porkbun.com/products/domains"
)

// PricingDisclaimer accompanies every price the client returns.
const PricingDisclaimer = "Pricing shown is not guaranteed and may be cached or incorrect. For up-to-date pricing, please visit: " + ProductsURL
