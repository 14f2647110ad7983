package models

import "time"

// PaymentMethod — реквизиты для ручного перевода.
type PaymentMethod struct {
	ID            string `json:"id" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=100"`
	Logo          string `json:"logo,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	Phone         string `json:"phone,omitempty"`
	IsActive      bool   `json:"isActive"`
}

// SocialLinks ссылки на соцсети.
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty" validate:"omitempty,url"`
	Telegram  string `json:"telegram,omitempty" validate:"omitempty,url"`
	Viber     string `json:"viber,omitempty"`
	Instagram string `json:"instagram,omitempty" validate:"omitempty,url"`
}

// Settings — единственный документ конфигурации сайта.
type Settings struct {
	SiteName        string          `json:"siteName" validate:"required,max=100"`
	SiteDescription string          `json:"siteDescription"`
	HeroTitle       string          `json:"heroTitle"`
	HeroSubtitle    string          `json:"heroSubtitle"`
	AboutText       string          `json:"aboutText"`
	ContactEmail    string          `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    string          `json:"contactPhone"`
	FooterText      string          `json:"footerText"`
	MaintenanceMode bool            `json:"maintenanceMode"`
	PaymentMethods  []PaymentMethod `json:"paymentMethods" validate:"dive"`
	SocialLinks     SocialLinks     `json:"socialLinks"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// PublicPaymentMethod — способ оплаты без реквизитов.
type PublicPaymentMethod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Logo     string `json:"logo,omitempty"`
	IsActive bool   `json:"isActive"`
}

// PublicSettings — то, что видно анонимному посетителю.
type PublicSettings struct {
	SiteName        string                `json:"siteName"`
	SiteDescription string                `json:"siteDescription"`
	HeroTitle       string                `json:"heroTitle"`
	HeroSubtitle    string                `json:"heroSubtitle"`
	AboutText       string                `json:"aboutText"`
	ContactEmail    string                `json:"contactEmail"`
	ContactPhone    string                `json:"contactPhone"`
	FooterText      string                `json:"footerText"`
	MaintenanceMode bool                  `json:"maintenanceMode"`
	PaymentMethods  []PublicPaymentMethod `json:"paymentMethods"`
	SocialLinks     SocialLinks           `json:"socialLinks"`
}

// DefaultSettings — настройки, которые материализуются при первом чтении.
func DefaultSettings() Settings {
	return Settings{
		SiteName:        "VPN Store",
		SiteDescription: "Premium VPN accounts with instant delivery",
		HeroTitle:       "Fast and secure VPN accounts",
		HeroSubtitle:    "Pay by bank or mobile wallet transfer",
		FooterText:      "All rights reserved.",
		PaymentMethods:  []PaymentMethod{},
	}
}

// Public возвращает публичное подмножество настроек.
func (s Settings) Public() PublicSettings {
	methods := make([]PublicPaymentMethod, 0, len(s.PaymentMethods))
	for _, m := range s.PaymentMethods {
		methods = append(methods, PublicPaymentMethod{
			ID:       m.ID,
			Name:     m.Name,
			Logo:     m.Logo,
			IsActive: m.IsActive,
		})
	}
	return PublicSettings{
		SiteName:        s.SiteName,
		SiteDescription: s.SiteDescription,
		HeroTitle:       s.HeroTitle,
		HeroSubtitle:    s.HeroSubtitle,
		AboutText:       s.AboutText,
		ContactEmail:    s.ContactEmail,
		ContactPhone:    s.ContactPhone,
		FooterText:      s.FooterText,
		MaintenanceMode: s.MaintenanceMode,
		PaymentMethods:  methods,
		SocialLinks:     s.SocialLinks,
	}
}

// ActivePaymentMethods возвращает включённые способы оплаты с реквизитами.
func (s Settings) ActivePaymentMethods() []PaymentMethod {
	res := make([]PaymentMethod, 0, len(s.PaymentMethods))
	for _, m := range s.PaymentMethods {
		if m.IsActive {
			res = append(res, m)
		}
	}
	return res
}
