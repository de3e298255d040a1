package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

type EmailHandler struct {
	emailService ports.EmailService
}

func NewEmailHandler(emailService ports.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

type sendEmailRequest struct {
	Business string `json:"business" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

type sendEmailResponse struct {
	Message         string                  `json:"message"`
	TotalRecipients int                     `json:"totalRecipients"`
	SuccessCount    int                     `json:"successCount"`
	FailureCount    int                     `json:"failureCount"`
	Results         []domain.DeliveryResult `json:"results"`
}

// Send fans a mailing out to all employee recipients.
//
// @Summary      Send a bulk email
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body  body      sendEmailRequest  true  "Business, subject and content"
// @Success      200   {object}  sendEmailResponse
// @Failure      400   {object}  map[string]string
// @Router       /email/send [post]
func (h *EmailHandler) Send(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req sendEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.emailService.SendBulk(c.Request().Context(), ports.SendBulkInput{
		SenderID: userID,
		Business: req.Business,
		Subject:  req.Subject,
		Content:  req.Content,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sendEmailResponse{
		Message:         "Email sending completed",
		TotalRecipients: res.TotalRecipients,
		SuccessCount:    res.SuccessCount,
		FailureCount:    res.FailureCount,
		Results:         res.Results,
	})
}

// Template returns a canned subject+content pair for the compose form.
//
// @Summary      Look up an email template
// @Tags         email
// @Produce      json
// @Param        template  path   string  true   "Template name"
// @Param        business  query  string  false  "Business unit (defaults to buss1)"
// @Success      200  {object}  domain.EmailTemplate
// @Failure      404  {object}  map[string]string
// @Router       /email/templates/{template} [get]
func (h *EmailHandler) Template(c echo.Context) error {
	tpl, err := h.emailService.Template(c.Request().Context(), c.QueryParam("business"), c.Param("template"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tpl)
}

// History is the admin view over past mailings.
//
// @Summary      Email history
// @Tags         email
// @Produce      json
// @Param        business  query  string  false  "Business unit"
// @Param        sender    query  string  false  "Sender name substring"
// @Param        dateFrom  query  string  false  "Start day (YYYY-MM-DD)"
// @Param        dateTo    query  string  false  "End day (YYYY-MM-DD)"
// @Success      200  {array}  domain.EmailLog
// @Router       /email/history [get]
func (h *EmailHandler) History(c echo.Context) error {
	filter := domain.EmailHistoryFilter{}

	if business := c.QueryParam("business"); business != "" && business != "all_businesses" {
		filter.Business = business
	}
	filter.Sender = c.QueryParam("sender")

	if from := c.QueryParam("dateFrom"); from != "" {
		day, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dateFrom must be YYYY-MM-DD")
		}
		filter.From = day
	}
	if to := c.QueryParam("dateTo"); to != "" {
		day, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dateTo must be YYYY-MM-DD")
		}
		// Inclusive end of day.
		filter.To = day.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	logs, err := h.emailService.History(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []*domain.EmailLog{}
	}
	return c.JSON(http.StatusOK, logs)
}
