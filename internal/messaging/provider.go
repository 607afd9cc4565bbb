package messaging

import (
	"fmt"
	"strings"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

const (
	// ProviderAuto tries 360dialog first, then the Cloud API.
	ProviderAuto = "auto"
	// ProviderDialog360 forces the 360dialog sender when credentials exist.
	ProviderDialog360 = "dialog360"
	// ProviderCloudAPI forces the Cloud API sender when credentials exist.
	ProviderCloudAPI = "cloudapi"
)

// ProviderSelectionConfig captures the credentials required to build outbound senders.
type ProviderSelectionConfig struct {
	Preference       string
	D360APIKey       string
	D360BaseURL      string
	CloudToken       string
	CloudPhoneNumber string
	CloudBaseURL     string
}

// BuildSender instantiates a Sender based on the preferred provider. It
// returns the sender, the provider that was selected, and a reason when no
// provider could be initialized.
func BuildSender(cfg ProviderSelectionConfig, logger *logging.Logger) (Sender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = ProviderAuto
	}

	missing := map[string]string{}
	var dialog360 Sender
	var cloudAPI Sender

	if cfg.D360APIKey != "" {
		dialog360 = NewDialog360Sender(cfg.D360APIKey, cfg.D360BaseURL, logger)
	} else {
		missing[ProviderDialog360] = "D360_API_KEY missing"
	}

	if cfg.CloudToken != "" && cfg.CloudPhoneNumber != "" {
		cloudAPI = NewCloudAPISender(cfg.CloudToken, cfg.CloudPhoneNumber, cfg.CloudBaseURL, logger)
	} else {
		var reasons []string
		if cfg.CloudToken == "" {
			reasons = append(reasons, "WA_CLOUD_TOKEN missing")
		}
		if cfg.CloudPhoneNumber == "" {
			reasons = append(reasons, "WA_PHONE_NUMBER_ID missing")
		}
		missing[ProviderCloudAPI] = strings.Join(reasons, ", ")
	}

	if preference != ProviderAuto {
		if preference == ProviderDialog360 && dialog360 != nil {
			return dialog360, ProviderDialog360, ""
		}
		if preference == ProviderCloudAPI && cloudAPI != nil {
			return cloudAPI, ProviderCloudAPI, ""
		}
		reason := missing[preference]
		if reason == "" {
			reason = fmt.Sprintf("%s sender not configured", preference)
		}
		return nil, "", reason
	}

	if dialog360 != nil && cloudAPI != nil {
		return NewFailoverSender(dialog360, ProviderDialog360, cloudAPI, ProviderCloudAPI, logger), ProviderDialog360 + "+" + ProviderCloudAPI, ""
	}
	if dialog360 != nil {
		return dialog360, ProviderDialog360, ""
	}
	if cloudAPI != nil {
		return cloudAPI, ProviderCloudAPI, ""
	}

	var reasons []string
	for _, provider := range []string{ProviderDialog360, ProviderCloudAPI} {
		if msg := missing[provider]; msg != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", provider, msg))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no WhatsApp providers configured")
	}
	return nil, "", strings.Join(reasons, "; ")
}
