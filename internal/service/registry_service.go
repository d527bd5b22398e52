package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"motortax-web/internal/models"
	"motortax-web/internal/utils"
)

var ErrRegistryNotFound = errors.New("subject not found in public registers")

// streetNumberRe splits a combined street value into street and house
// number, e.g. "Hlavná 12/A" or "Dlhá 5".
var streetNumberRe = regexp.MustCompile(`^(.+?)\s+(\d+[A-Za-z]?(?:/\d+[A-Za-z]?)?)$`)

var nonDigitRe = regexp.MustCompile(`\D`)

// RegistryService looks up taxpayer identification data in the public
// registers: RUZ (register of financial statements) first because it
// carries the DIC and a complete address, RPO (register of legal
// entities) as fallback. Results are cached in redis.
type RegistryService struct {
	rpoBase  string
	ruzBase  string
	client   *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewRegistryService(rpoBase, ruzBase string, timeout time.Duration, redisClient *redis.Client, cacheTTL time.Duration) *RegistryService {
	return &RegistryService{
		rpoBase:  strings.TrimRight(rpoBase, "/"),
		ruzBase:  strings.TrimRight(ruzBase, "/"),
		client:   &http.Client{Timeout: timeout},
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// ICOFromDIC derives the 8-digit organisation number from a tax
// identification number. Slovak corporate DICs prefix the ICO with "20".
func ICOFromDIC(dic string) string {
	clean := nonDigitRe.ReplaceAllString(dic, "")
	if len(clean) < 8 {
		return ""
	}
	if strings.HasPrefix(clean, "20") && len(clean) >= 10 {
		return clean[2:10]
	}
	return clean[:8]
}

func normalizeICO(ico string) string {
	clean := nonDigitRe.ReplaceAllString(ico, "")
	for len(clean) < 8 {
		clean = "0" + clean
	}
	return clean
}

func (s *RegistryService) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "MotorTaxWeb/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (s *RegistryService) cacheGet(ctx context.Context, key string) *models.RegistryRecord {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var rec models.RegistryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

func (s *RegistryService) cacheSet(ctx context.Context, key string, rec *models.RegistryRecord) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.redis.Set(ctx, key, data, s.cacheTTL)
}

type ruzSearchResponse struct {
	ID []int64 `json:"id"`
}

type ruzUnitDetail struct {
	DIC     string `json:"dic"`
	NazovUJ string `json:"nazovUJ"`
	Ulica   string `json:"ulica"`
	PSC     string `json:"psc"`
	Mesto   string `json:"mesto"`
}

// LookupRUZ finds an accounting unit by ICO. RUZ stores the street and
// house number in one field, so the record splits them heuristically.
func (s *RegistryService) LookupRUZ(ctx context.Context, ico string) (*models.RegistryRecord, error) {
	ico = normalizeICO(ico)

	cacheKey := "registry:ruz:" + ico
	if rec := s.cacheGet(ctx, cacheKey); rec != nil {
		return rec, nil
	}

	var search ruzSearchResponse
	err := s.getJSON(ctx, s.ruzBase+"/uctovne-jednotky", url.Values{
		"zmenene-od":       {"2000-01-01"},
		"pokracovat-za-id": {"0"},
		"max-zaznamov":     {"1"},
		"ico":              {ico},
	}, &search)
	if err != nil {
		return nil, err
	}
	if len(search.ID) == 0 {
		return nil, ErrRegistryNotFound
	}

	var detail ruzUnitDetail
	err = s.getJSON(ctx, s.ruzBase+"/uctovna-jednotka", url.Values{
		"id": {fmt.Sprintf("%d", search.ID[0])},
	}, &detail)
	if err != nil {
		return nil, err
	}
	if detail.NazovUJ == "" {
		return nil, ErrRegistryNotFound
	}

	rec := &models.RegistryRecord{
		ICO:        ico,
		DIC:        detail.DIC,
		Name:       detail.NazovUJ,
		Street:     detail.Ulica,
		PostalCode: detail.PSC,
		City:       detail.Mesto,
		Country:    "Slovenská republika",
	}
	if m := streetNumberRe.FindStringSubmatch(rec.Street); m != nil {
		rec.Street = m[1]
		rec.HouseNumber = m[2]
	}

	s.cacheSet(ctx, cacheKey, rec)
	return rec, nil
}

type rpoOrganization struct {
	ID int64 `json:"id"`
}

type rpoSearchObject struct {
	ID            int64             `json:"id"`
	Organizations []rpoOrganization `json:"organizations"`
}

type rpoDetail struct {
	Name  string `json:"name"`
	Names []struct {
		Value       string  `json:"value"`
		EffectiveTo *string `json:"effectiveTo"`
	} `json:"names"`
	Addresses []struct {
		Street         string  `json:"street"`
		StreetName     string  `json:"streetName"`
		BuildingNumber string  `json:"buildingNumber"`
		RegNumber      string  `json:"regNumber"`
		PostalCode     string  `json:"postalCode"`
		Municipality   string  `json:"municipality"`
		City           string  `json:"city"`
		EffectiveTo    *string `json:"effectiveTo"`
	} `json:"addresses"`
	Identifiers []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"identifiers"`
}

// rpoOrganizationID copes with both response shapes the search endpoint
// produces, a bare array of organizations or a wrapping object.
func rpoOrganizationID(raw json.RawMessage) int64 {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []rpoOrganization
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return list[0].ID
		}
		return 0
	}

	var obj rpoSearchObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0
	}
	if obj.ID != 0 {
		return obj.ID
	}
	if len(obj.Organizations) > 0 {
		return obj.Organizations[0].ID
	}
	return 0
}

// LookupRPO finds a legal entity by ICO in the statistical office
// register.
func (s *RegistryService) LookupRPO(ctx context.Context, ico string) (*models.RegistryRecord, error) {
	ico = normalizeICO(ico)

	cacheKey := "registry:rpo:" + ico
	if rec := s.cacheGet(ctx, cacheKey); rec != nil {
		return rec, nil
	}

	var raw json.RawMessage
	err := s.getJSON(ctx, s.rpoBase+"/search", url.Values{"identifier": {ico}}, &raw)
	if err != nil {
		return nil, err
	}

	orgID := rpoOrganizationID(raw)
	if orgID == 0 {
		return nil, ErrRegistryNotFound
	}

	var detail rpoDetail
	if err := s.getJSON(ctx, fmt.Sprintf("%s/organizations/%d", s.rpoBase, orgID), nil, &detail); err != nil {
		return nil, err
	}

	rec := &models.RegistryRecord{
		ICO:     ico,
		Country: "Slovenská republika",
	}

	rec.Name = detail.Name
	if rec.Name == "" {
		for _, n := range detail.Names {
			if n.EffectiveTo == nil {
				rec.Name = n.Value
				break
			}
		}
		if rec.Name == "" && len(detail.Names) > 0 {
			rec.Name = detail.Names[0].Value
		}
	}
	if rec.Name == "" {
		return nil, ErrRegistryNotFound
	}

	for _, addr := range detail.Addresses {
		if addr.EffectiveTo != nil {
			continue
		}
		rec.Street = addr.Street
		if rec.Street == "" {
			rec.Street = addr.StreetName
		}
		rec.HouseNumber = addr.BuildingNumber
		if rec.HouseNumber == "" {
			rec.HouseNumber = addr.RegNumber
		}
		rec.PostalCode = addr.PostalCode
		rec.City = addr.Municipality
		if rec.City == "" {
			rec.City = addr.City
		}
		break
	}

	for _, ident := range detail.Identifiers {
		if ident.Type == "DIC" || strings.Contains(strings.ToLower(ident.Type), "dic") {
			rec.DIC = ident.Value
			break
		}
	}

	s.cacheSet(ctx, cacheKey, rec)
	return rec, nil
}

// Verify resolves the ICO from a DIC and queries the registers, RUZ
// first, then RPO.
func (s *RegistryService) Verify(ctx context.Context, dic string) (*models.RegistryRecord, error) {
	log := utils.GetLogger()

	ico := ICOFromDIC(dic)
	if ico == "" {
		return nil, fmt.Errorf("cannot derive ICO from DIC %q", dic)
	}

	rec, err := s.LookupRUZ(ctx, ico)
	if err == nil {
		return rec, nil
	}
	log.WithField("ico", ico).WithError(err).Debug("RUZ lookup failed, trying RPO")

	rec, err = s.LookupRPO(ctx, ico)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
