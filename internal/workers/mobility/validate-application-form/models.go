package validateapplicationform

import "mobility-portal/internal/models"

type Input struct {
	ApplicationForm *models.ApplicationForm `json:"applicationForm"`
}

type Output struct {
	IsValid        bool              `json:"isValid"`
	Errors         map[string]string `json:"validationErrors"`
	RequiredFields []string          `json:"requiredFields"`
}
