package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/salary-predictor/internal/predictor"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

type page struct {
	Banner string
	Error  string
	Result string
	Form   predictor.Request

	MinExperience int
	MaxExperience int
	Educations    []string
	Roles         []string
	Departments   []string
	Locations     []string
	Genders       []string
}

type selectField struct {
	Label    string
	Name     string
	Selected string
	Options  []string
}

func newSelectField(label, name, selected string, options []string) selectField {
	return selectField{Label: label, Name: name, Selected: selected, Options: options}
}

func (s *Server) newPage(form predictor.Request) page {
	return page{
		Banner:        Banner(s.handle),
		Form:          form,
		MinExperience: predictor.MinExperience,
		MaxExperience: predictor.MaxExperience,
		Educations:    predictor.Educations,
		Roles:         predictor.Roles,
		Departments:   predictor.Departments,
		Locations:     predictor.Locations,
		Genders:       predictor.Genders,
	}
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.newPage(predictor.DefaultRequest()))
}

// errMissingExperience is returned when experience is absent or blank.
// Binding alone would read either as 0 years.
func errMissingExperience(value any) error {
	return errors.NewValidationError("experience", "is required", value)
}

func (s *Server) predictForm(c *gin.Context) {
	if v, ok := c.GetPostForm("experience"); !ok || strings.TrimSpace(v) == "" {
		p := s.newPage(predictor.DefaultRequest())
		p.Error = "Invalid input: " + errMissingExperience(v).Error()
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}

	var req predictor.Request
	if err := c.ShouldBind(&req); err != nil {
		p := s.newPage(predictor.DefaultRequest())
		p.Error = "Invalid input: " + err.Error()
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}

	p := s.newPage(req)
	if !s.handle.Available() {
		c.HTML(http.StatusServiceUnavailable, "index.html", p)
		return
	}
	if err := req.Validate(); err != nil {
		p.Error = "Invalid input: " + err.Error()
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}

	salary, err := s.handle.Predict(req)
	if err != nil {
		_ = c.Error(err)
		p.Error = "Prediction failed: " + err.Error()
		c.HTML(http.StatusInternalServerError, "index.html", p)
		return
	}
	p.Result = "Predicted Salary: " + predictor.FormatCurrency(salary)
	c.HTML(http.StatusOK, "index.html", p)
}

// predictPayload is the JSON body of /api/v1/predict. Experience is a
// pointer so that a missing field can be told apart from 0.
type predictPayload struct {
	Experience *int   `json:"experience"`
	Education  string `json:"education"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Gender     string `json:"gender"`
}

func (p predictPayload) request() (predictor.Request, error) {
	if p.Experience == nil {
		return predictor.Request{}, errMissingExperience(nil)
	}
	return predictor.Request{
		Experience: *p.Experience,
		Education:  p.Education,
		Role:       p.Role,
		Department: p.Department,
		Location:   p.Location,
		Gender:     p.Gender,
	}, nil
}

type predictResponse struct {
	Salary    float64 `json:"salary"`
	Formatted string  `json:"formatted"`
}

func (s *Server) predictJSON(c *gin.Context) {
	if !s.handle.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": Banner(s.handle)})
		return
	}

	var payload predictPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := payload.request()
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		var vErr *errors.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": vErr.ParamName})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	salary, err := s.handle.Predict(req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, predictResponse{
		Salary:    salary,
		Formatted: predictor.FormatCurrency(salary),
	})
}

func (s *Server) healthz(c *gin.Context) {
	body := gin.H{"model_available": s.handle.Available()}
	if err := s.handle.Err(); err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
