package v1

import (
	"fmt"
	"net/http"

	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type SettingsLinks struct {
	Categories      string `json:"categories" example:"https://example.com/api/v1/users/alice/settings/categories"`           // Category list
	PaymentMethods  string `json:"paymentMethods" example:"https://example.com/api/v1/users/alice/settings/paymentMethods"`   // Payment method list
	ExpenseTypes    string `json:"expenseTypes" example:"https://example.com/api/v1/users/alice/settings/expenseTypes"`       // Expense type list
	CreditCardNames string `json:"creditCardNames" example:"https://example.com/api/v1/users/alice/settings/creditCardNames"` // Credit card name list
	Locale          string `json:"locale" example:"https://example.com/api/v1/users/alice/locale"`                            // Language of month labels
}

type Settings struct {
	models.Settings
	Defaults map[models.SettingsList]string `json:"defaults"` // Default selection of each list
	Links    SettingsLinks                  `json:"links"`
}

func newSettings(c *gin.Context, userID string, model models.Settings) Settings {
	url := userURL(c, userID)

	return Settings{
		Settings: model,
		Defaults: model.Defaults(),
		Links: SettingsLinks{
			Categories:      fmt.Sprintf("%s/settings/%s", url, models.Categories),
			PaymentMethods:  fmt.Sprintf("%s/settings/%s", url, models.PaymentMethods),
			ExpenseTypes:    fmt.Sprintf("%s/settings/%s", url, models.ExpenseTypes),
			CreditCardNames: fmt.Sprintf("%s/settings/%s", url, models.CreditCardNames),
			Locale:          url + "/locale",
		},
	}
}

type SettingsResponse struct {
	Data  *Settings `json:"data"`                                                                                                                    // Data for the settings
	Error *string   `json:"error" example:"unknown settings list 'colors', must be one of [categories paymentMethods expenseTypes creditCardNames]"` // The error, if any occurred
}

// SettingsValue is a single value of a settings list.
type SettingsValue struct {
	Value string `json:"value" example:"Pets"`
}

// RegisterSettingsRoutes registers the routes for settings with
// the RouterGroup that is passed.
func (co Controller) RegisterSettingsRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsSettings)
	r.GET("", co.GetSettings)
	r.OPTIONS("/:list", OptionsSettingsList)
	r.POST("/:list", co.AddSettingsValue)
	r.OPTIONS("/:list/:value", OptionsSettingsValue)
	r.DELETE("/:list/:value", co.RemoveSettingsValue)
}

// RegisterLocaleRoutes registers the routes for the locale with
// the RouterGroup that is passed.
func (co Controller) RegisterLocaleRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsLocale)
	r.PUT("", co.SetLocale)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settings
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Router			/v1/users/{userId}/settings [options]
func OptionsSettings(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settings
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Param			list	path	string	true	"Name of the settings list"
// @Router			/v1/users/{userId}/settings/{list} [options]
func OptionsSettingsList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settings
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Param			list	path	string	true	"Name of the settings list"
// @Param			value	path	string	true	"Value of the settings list"
// @Router			/v1/users/{userId}/settings/{list}/{value} [options]
func OptionsSettingsValue(c *gin.Context) {
	httputil.OptionsDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Settings
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Router			/v1/users/{userId}/locale [options]
func OptionsLocale(c *gin.Context) {
	httputil.OptionsPut(c)
}

// @Summary		Get settings
// @Description	Returns the settings of a user. Users without settings get the default settings.
// @Tags			Settings
// @Produce		json
// @Success		200		{object}	SettingsResponse
// @Failure		400		{object}	SettingsResponse
// @Failure		500		{object}	SettingsResponse
// @Param			userId	path		string	true	"ID of the user"
// @Router			/v1/users/{userId}/settings [get]
func (co Controller) GetSettings(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	settings, err := co.Registry.Get(c.Request.Context(), uri.UserID)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	data := newSettings(c, uri.UserID, settings)
	c.JSON(http.StatusOK, SettingsResponse{Data: &data})
}

// @Summary		Add settings value
// @Description	Appends a value to a settings list. Values are trimmed, duplicates are allowed.
// @Tags			Settings
// @Accept			json
// @Produce		json
// @Success		200		{object}	SettingsResponse
// @Failure		400		{object}	SettingsResponse
// @Failure		500		{object}	SettingsResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			list	path		string			true	"Name of the settings list"
// @Param			value	body		SettingsValue	true	"Value"
// @Router			/v1/users/{userId}/settings/{list} [post]
func (co Controller) AddSettingsValue(c *gin.Context) {
	var uri URISettingsList
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	list, err := models.ParseSettingsList(uri.List)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	var value SettingsValue
	if err := httputil.BindData(c, &value); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	settings, err := co.Registry.Add(c.Request.Context(), uri.UserID, list, value.Value)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	data := newSettings(c, uri.UserID, settings)
	c.JSON(http.StatusOK, SettingsResponse{Data: &data})
}

// @Summary		Remove settings value
// @Description	Removes every occurrence of a value from a settings list. Records using the value are not changed.
// @Description	Without confirm=true, the confirmation prompt is returned instead.
// @Tags			Settings
// @Produce		json
// @Success		200		{object}	SettingsResponse
// @Failure		400		{object}	SettingsResponse
// @Failure		428		{object}	confirmationError
// @Failure		500		{object}	SettingsResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			list	path		string	true	"Name of the settings list"
// @Param			value	path		string	true	"Value to remove"
// @Param			confirm	query		bool	false	"Confirms the removal"
// @Router			/v1/users/{userId}/settings/{list}/{value} [delete]
func (co Controller) RemoveSettingsValue(c *gin.Context) {
	var uri URISettingsValue
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	list, err := models.ParseSettingsList(uri.List)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	removal := co.Registry.Removal(uri.UserID, list, uri.Value)

	yes, err := confirmed(c)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	if !yes {
		requireConfirmation(c, removal.Prompt)
		return
	}

	settings, err := removal.Confirm(c.Request.Context())
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	data := newSettings(c, uri.UserID, settings)
	c.JSON(http.StatusOK, SettingsResponse{Data: &data})
}

// @Summary		Set locale
// @Description	Sets the language of the month labels in annual rollups and exports
// @Tags			Settings
// @Accept			json
// @Produce		json
// @Success		200		{object}	SettingsResponse
// @Failure		400		{object}	SettingsResponse
// @Failure		500		{object}	SettingsResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			locale	body		SettingsValue	true	"BCP 47 language tag, e.g. pt-BR"
// @Router			/v1/users/{userId}/locale [put]
func (co Controller) SetLocale(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	var value SettingsValue
	if err := httputil.BindData(c, &value); err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	settings, err := co.Registry.SetLocale(c.Request.Context(), uri.UserID, value.Value)
	if err != nil {
		c.JSON(status(err), SettingsResponse{Error: errorText(c, err)})
		return
	}

	data := newSettings(c, uri.UserID, settings)
	c.JSON(http.StatusOK, SettingsResponse{Data: &data})
}
