package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/alankar-storefront/internal/catalog"
	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/pagination"
	"github.com/xenking/alankar-storefront/internal/share"
	"github.com/xenking/alankar-storefront/pkg/httpmiddleware"
)

// User-facing messages.
const (
	msgListFailed    = "We couldn't load the catalog. Please try again."
	msgDetailFailed  = "We couldn't load this product. Please try again."
	msgNotFound      = "Product not found."
	msgContactFailed = "We couldn't send your message. Please try again or message us on WhatsApp."
	msgContactSent   = "Message sent! We will get back to you soon."
)

// maxFormBytes bounds a contact form body.
const maxFormBytes = 64 << 10

// list fetches one page. A page past the end of a non-empty result is
// corrected to the last page and fetched again.
func (s *Server) list(ctx context.Context, q product.Query) (*product.ResultSet, product.Query, error) {
	rs, err := s.src.List(ctx, q)
	if err != nil {
		return nil, q, err
	}
	if p := pagination.Clamp(q.Page, rs.Total, q.PageSize); p != q.Page {
		q.Page = p
		if rs, err = s.src.List(ctx, q); err != nil {
			return nil, q, err
		}
	}
	if err := product.CheckUnique(rs.Items); err != nil {
		zctx.From(ctx).Warn("Catalog page has duplicate codes", zap.Error(err))
	}
	return rs, q, nil
}

// page loads everything the full page shows. The vocabulary is fetched
// alongside the list; its failure only disables the filter options.
func (s *Server) page(r *http.Request, contact contactView) (pageData, int) {
	ctx := r.Context()
	lg := zctx.From(ctx)
	q := parseQuery(r.URL.Query(), s.cfg.PageSize)

	var (
		vocab    *product.Vocabulary
		vocabErr error
		rs       *product.ResultSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vocab, vocabErr = s.src.Filters(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		rs, q, err = s.list(gctx, q)
		return err
	})
	listErr := g.Wait()

	if vocabErr != nil && listErr == nil {
		lg.Warn("Filter vocabulary unavailable", zap.Error(vocabErr))
	}

	data := pageData{
		Brand:   s.cfg.Brand,
		Filters: s.newFilters(vocab, vocabErr, q),
		Contact: contact,
	}
	if listErr != nil {
		lg.Warn("Catalog list failed", zap.Error(listErr))
		data.Grid = gridView{Err: msgListFailed}
		return data, http.StatusBadGateway
	}
	data.Grid = newGrid(q, rs)

	// Deep link: open the modal only for a product on the loaded page.
	if code := catalog.ProductCodeFromLocation(r.URL.String()); code != "" {
		if p, ok := product.Find(rs.Items, code); ok {
			d := s.newDetail(p, 0, s.pageURL(r))
			d.Loading = true
			data.Modal = d
		}
	}
	return data, http.StatusOK
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, status := s.page(r, s.newContact(enquiry.Form{}))
	s.render(w, r, status, "page", data)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r.URL.Query(), s.cfg.PageSize)
	rs, q, err := s.list(r.Context(), q)
	if err != nil {
		zctx.From(r.Context()).Warn("Catalog list failed", zap.Error(err))
		if httpmiddleware.IsHTMX(r) {
			// Keep the last good grid on screen.
			httpmiddleware.Toast(w, httpmiddleware.ToastError, msgListFailed, true)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		s.render(w, r, http.StatusBadGateway, "grid", gridView{Err: msgListFailed})
		return
	}
	if httpmiddleware.IsHTMX(r) {
		w.Header().Set("HX-Push-Url", withQuery("/", linkValues(q)))
	}
	s.render(w, r, http.StatusOK, "grid", newGrid(q, rs))
}

// codeParam returns the unescaped product code route parameter.
func codeParam(r *http.Request) string {
	raw := chi.URLParam(r, "code")
	if code, err := url.PathUnescape(raw); err == nil {
		return code
	}
	return raw
}

// getProduct resolves code. A response for a different code is treated as
// missing.
func (s *Server) getProduct(ctx context.Context, code string) (*product.Product, error) {
	p, err := s.src.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if p.Code != code {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	code := codeParam(r)
	image, _ := strconv.Atoi(r.URL.Query().Get(paramImage))

	p, err := s.getProduct(r.Context(), code)
	switch {
	case errors.Is(err, product.ErrNotFound):
		s.render(w, r, http.StatusNotFound, "detail", &detailView{Code: code, Err: msgNotFound})
	case err != nil:
		zctx.From(r.Context()).Warn("Product detail failed", zap.String("code", code), zap.Error(err))
		s.render(w, r, http.StatusBadGateway, "detail", &detailView{
			Code:    code,
			Err:     msgDetailFailed,
			Partial: "/products/" + url.PathEscape(code),
		})
	default:
		s.render(w, r, http.StatusOK, "detail", s.newDetail(*p, image, s.pageURL(r)))
	}
}

func (s *Server) handleShareWhatsApp(w http.ResponseWriter, r *http.Request) {
	code := codeParam(r)
	p, err := s.getProduct(r.Context(), code)
	switch {
	case errors.Is(err, product.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		zctx.From(r.Context()).Warn("Share lookup failed", zap.String("code", code), zap.Error(err))
		http.Error(w, msgDetailFailed, http.StatusBadGateway)
	default:
		link := share.ProductLink(s.pageURL(r), p.Code)
		http.Redirect(w, r, share.WhatsAppURL(*p, link, s.cfg.Brand), http.StatusFound)
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := enquiry.Form{
		Name:        r.PostForm.Get("name"),
		Email:       r.PostForm.Get("email"),
		Phone:       r.PostForm.Get("phone"),
		Message:     r.PostForm.Get("message"),
		ProductCode: r.PostForm.Get("productCode"),
	}

	view := s.newContact(form)
	status := http.StatusOK

	e, err := s.enquiries.Submit(r.Context(), form)
	var verrs enquiry.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		status = http.StatusUnprocessableEntity
		for _, v := range verrs {
			view.Errors[v.Field] = v.Reason
		}
	case err != nil:
		zctx.From(r.Context()).Error("Enquiry submission failed", zap.Error(err))
		status = http.StatusInternalServerError
		view.Err = msgContactFailed
		if httpmiddleware.IsHTMX(r) {
			httpmiddleware.Toast(w, httpmiddleware.ToastError, msgContactFailed, false)
		}
	default:
		zctx.From(r.Context()).Info("Enquiry accepted", zap.String("enquiry_id", e.ID))
		view = s.newContact(enquiry.Form{})
		view.Sent = true
		if httpmiddleware.IsHTMX(r) {
			httpmiddleware.Toast(w, httpmiddleware.ToastSuccess, msgContactSent, false)
		}
	}

	if httpmiddleware.IsHTMX(r) {
		s.render(w, r, status, "contact-form", view)
		return
	}
	data, pageStatus := s.page(r, view)
	if status == http.StatusOK {
		status = pageStatus
	}
	s.render(w, r, status, "page", data)
}
