package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/tourneydesk/internal/admin"
	"github.com/vytor/tourneydesk/internal/errors"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/services"
)

const (
	msgFixErrors      = "Please correct the errors below."
	msgNoAction       = "No action selected."
	msgNothingChecked = "Items must be selected in order to perform actions on them. No items have been changed."
)

// inlineView is an inline editor ready for rendering.
type inlineView struct {
	admin.Inline
	Formset *admin.Formset
	Rows    []inlineRow
}

type inlineRow struct {
	Form   *admin.Form
	Fields []admin.BoundField
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("rendering admin index")
	s.render(w, r, "pages/index.html", pageData{
		"title":  "Site administration",
		"models": s.Site.Index(),
	})
}

func (s *Server) handleChangelist(w http.ResponseWriter, r *http.Request) {
	s.renderChangelist(w, r, chi.URLParam(r, "model"), "")
}

func (s *Server) renderChangelist(w http.ResponseWriter, r *http.Request, slug, message string) {
	cl, err := s.Site.Changelist(r.Context(), slug, r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/changelist.html", pageData{
		"title":      fmt.Sprintf("Select %s to change", cl.Name),
		"body_class": "change-list",
		"meta":       cl.Meta,
		"media":      cl.Media,
		"cl":         cl,
		"message":    message,
	})
}

// handleAction runs a bulk action posted from a list page. Deletion asks
// for confirmation first; the confirmation page posts back with post=yes.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	slug := chi.URLParam(r, "model")

	meta, err := s.Site.Meta(slug)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		handleError(w, r, errors.NewBadRequestError("malformed form body"))
		return
	}

	action := r.PostForm.Get("action")
	if action == "" {
		s.renderChangelist(w, r, slug, msgNoAction)
		return
	}
	if action != admin.ActionDeleteSelected || !meta.HasAction(action) {
		handleError(w, r, errors.NewBadRequestError(fmt.Sprintf("unknown action %q", action)))
		return
	}

	ids, err := parseIDs(r.PostForm["_selected_action"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	if len(ids) == 0 {
		s.renderChangelist(w, r, slug, msgNothingChecked)
		return
	}

	objects, err := s.Site.Objects(ctx, slug, ids)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if r.PostForm.Get("post") != "yes" {
		s.render(w, r, "pages/delete_confirmation.html", pageData{
			"title":   "Are you sure?",
			"meta":    meta,
			"media":   meta.Media,
			"objects": objects,
			"bulk":    true,
			"action":  action,
			"back":    listURL(slug),
		})
		return
	}

	if err := s.Site.Delete(ctx, slug, ids); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("deleted %d %s records", len(ids), slug)
	http.Redirect(w, r, listURL(slug), http.StatusSeeOther)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.changeForm(w, r, 0)
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.changeForm(w, r, id)
}

// changeForm serves the add (id 0) and change pages of a model.
func (s *Server) changeForm(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	slug := chi.URLParam(r, "model")

	model, err := s.Site.Model(slug)
	if err != nil {
		handleError(w, r, err)
		return
	}
	meta, _ := s.Site.Meta(slug)

	var obj *admin.Object
	if id != 0 {
		if obj, err = s.Site.Object(ctx, slug, id); err != nil {
			handleError(w, r, err)
			return
		}
	}

	fields, err := admin.ResolveFields(ctx, model.FormFields())
	if err != nil {
		handleError(w, r, err)
		return
	}
	inlines := append([]admin.Inline(nil), model.InlineEditors()...)
	for i := range inlines {
		if inlines[i].Fields, err = admin.ResolveFields(ctx, inlines[i].Fields); err != nil {
			handleError(w, r, err)
			return
		}
	}

	page := changePage{meta: meta, object: obj, fields: fields, inlines: inlines}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			handleError(w, r, errors.NewBadRequestError("malformed form body"))
			return
		}
		page.form = admin.NewForm(r.PostForm)
		page.sets = make(map[string]*admin.Formset, len(inlines))
		for _, in := range inlines {
			fs, err := admin.ParseFormset(r.PostForm, in.Prefix)
			if err != nil {
				handleError(w, r, errors.NewBadRequestError(err.Error()))
				return
			}
			page.sets[in.Prefix] = fs
		}

		savedID, err := model.SaveForm(ctx, id, page.form, page.sets)
		if stderrors.Is(err, admin.ErrInvalid) {
			reason := invalidReason(err)
			log.Debug("%s form rejected: reason=%s", slug, reason)
			s.Metrics.validationFailed(slug, reason)
			page.hasErrors = true
			s.renderChangeForm(w, r, page)
			return
		}
		if err != nil {
			handleError(w, r, err)
			return
		}

		log.Info("saved %s id=%d", slug, savedID)
		switch {
		case r.PostForm.Has("_continue"):
			http.Redirect(w, r, changeURL(slug, savedID), http.StatusSeeOther)
		case r.PostForm.Has("_addanother"):
			http.Redirect(w, r, "/admin/"+slug+"/add", http.StatusSeeOther)
		default:
			http.Redirect(w, r, listURL(slug), http.StatusSeeOther)
		}
		return
	}

	values := url.Values{}
	if id != 0 {
		if values, err = model.LoadValues(ctx, id); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		query := r.URL.Query()
		for _, f := range fields {
			if v := query.Get(f.Name); v != "" {
				values.Set(f.Name, v)
			}
		}
	}
	page.form = admin.NewForm(values)
	page.sets = make(map[string]*admin.Formset, len(inlines))
	for _, in := range inlines {
		fs, err := s.initialFormset(r, values, in, id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		page.sets[in.Prefix] = fs
	}
	s.renderChangeForm(w, r, page)
}

// initialFormset builds the rows shown on a fresh form: the stored rows of
// a record, or the seeded rows of an add page, followed by blank rows.
func (s *Server) initialFormset(r *http.Request, values url.Values, in admin.Inline, id int64) (*admin.Formset, error) {
	if id != 0 {
		fs, err := admin.ParseFormset(values, in.Prefix)
		if err != nil {
			fs = admin.NewFormset(values, in.Prefix)
		}
		fs.AppendBlank(in.Extra)
		return fs, nil
	}

	fs := admin.NewFormset(values, in.Prefix)
	if in.Seed == nil {
		fs.AppendBlank(in.Extra)
		return fs, nil
	}
	rows, extra, err := in.Seed(r.Context(), r.URL.Query())
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		fs.Append(0, row)
	}
	fs.AppendBlank(extra)
	return fs, nil
}

type changePage struct {
	meta      *admin.Meta
	object    *admin.Object
	fields    []admin.Field
	inlines   []admin.Inline
	form      *admin.Form
	sets      map[string]*admin.Formset
	hasErrors bool
}

func (s *Server) renderChangeForm(w http.ResponseWriter, r *http.Request, p changePage) {
	views := make([]inlineView, 0, len(p.inlines))
	for _, in := range p.inlines {
		fs := p.sets[in.Prefix]
		rows := make([]inlineRow, len(fs.Rows))
		for i, row := range fs.Rows {
			rows[i] = inlineRow{Form: row, Fields: admin.Bind(in.Fields, row)}
		}
		views = append(views, inlineView{Inline: in, Formset: fs, Rows: rows})
	}

	title := "Add " + p.meta.Name
	if p.object != nil {
		title = "Change " + p.meta.Name
	}
	data := pageData{
		"title":      title,
		"body_class": "change-form",
		"meta":       p.meta,
		"media":      p.meta.Media,
		"form":       p.form,
		"fields":     admin.Bind(p.fields, p.form),
		"inlines":    views,
		"has_errors": p.hasErrors,
	}
	if p.object != nil {
		data["object"] = p.object
	}
	s.render(w, r, "pages/change_form.html", data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "model")
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	meta, err := s.Site.Meta(slug)
	if err != nil {
		handleError(w, r, err)
		return
	}
	obj, err := s.Site.Object(ctx, slug, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, r, "pages/delete_confirmation.html", pageData{
			"title":   "Are you sure?",
			"meta":    meta,
			"media":   meta.Media,
			"object":  obj,
			"objects": []admin.Object{*obj},
			"back":    changeURL(slug, id),
		})
		return
	}

	if err := s.Site.Delete(ctx, slug, []int64{id}); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(ctx).Info("deleted %s id=%d", slug, id)
	http.Redirect(w, r, listURL(slug), http.StatusSeeOther)
}

// invalidReason labels a rejected submission for the failure counter.
func invalidReason(err error) string {
	var verr *services.ValidationErrors
	if stderrors.As(err, &verr) {
		return verr.Reason()
	}
	return "field"
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.NewBadRequestError(fmt.Sprintf("invalid id %q", v))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func listURL(slug string) string {
	return "/admin/" + slug + "/"
}

func changeURL(slug string, id int64) string {
	return fmt.Sprintf("/admin/%s/%d/change", slug, id)
}
