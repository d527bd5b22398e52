package service

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"motortax-web/internal/models"
)

// XMLService renders assembled declarations into the XML form submitted
// to the financial administration portal. Booleans are written as "1"
// and "0", zero numeric values as empty elements.
type XMLService struct {
	storagePath string
}

func NewXMLService(storagePath string) *XMLService {
	return &XMLService{storagePath: storagePath}
}

type xmlTypDP struct {
	RDP string `xml:"rdp"`
	ODP string `xml:"odp"`
	DDP string `xml:"ddp"`
}

type xmlObdobie struct {
	Od string `xml:"od"`
	Do string `xml:"do"`
}

type xmlSidlo struct {
	Ulica    string `xml:"ulica"`
	Cislo    string `xml:"cislo"`
	PSC      string `xml:"psc"`
	Obec     string `xml:"obec"`
	Stat     string `xml:"stat"`
	Telefon  string `xml:"telefon"`
	EmailFax string `xml:"emailFax"`
}

type xmlHlavicka struct {
	FO             string     `xml:"fo"`
	PO             string     `xml:"po"`
	Zahranicna     string     `xml:"zahranicna"`
	DIC            string     `xml:"dic"`
	DatumNarodenia string     `xml:"datumNarodenia"`
	TypDP          xmlTypDP   `xml:"typDP"`
	Obdobie        xmlObdobie `xml:"zdanovacieObdobie"`
	ObchodneMeno   string     `xml:"obchodneMeno"`
	Sidlo          xmlSidlo   `xml:"sidlo"`
}

type xmlOznacenie struct {
	Aktualna string `xml:"aktualna"`
	Celkovo  string `xml:"celkovo"`
}

type xmlStlpec struct {
	R01           string `xml:"r01"`
	R02Vzniku     string `xml:"r02vzniku"`
	R02Zaniku     string `xml:"r02zaniku"`
	R03Kategoria  string `xml:"r03Kategoria"`
	R04KodBABB    string `xml:"r04KodDruhuBA-BB"`
	R04KodBCBD    string `xml:"r04KodDruhuBC-BD"`
	R05Vzduchove  string `xml:"r05VzduchovePruzenie"`
	R05IneSystemy string `xml:"r05IneSystemy"`
	R06EVC        string `xml:"r06-EVC"`
	R07Objem      string `xml:"r07-ObjemValcov"`
	R08Vykon      string `xml:"r08-VykonMotora"`
	R09Hmotnost   string `xml:"r09Hmotnost"`
	R10Napravy    string `xml:"r10PocetNaprav"`
	R12Oslobodene string `xml:"r12oslobodene"`
	R13Sadzba     string `xml:"r13sadzba"`

	R14Zvysenie10 string `xml:"r14zvysenieSadzby1_10"`
	R14Zvysenie20 string `xml:"r14zvysenieSadzby1_20"`
	R14Zvysenie30 string `xml:"r14zvysenieSadzby1_30"`
	R14Zvysenie40 string `xml:"r14zvysenieSadzby1_40"`
	R14Zvysenie50 string `xml:"r14zvysenieSadzby1_50"`

	R15RocnaSadzba string `xml:"r15rocnaSadzba_1"`
	R16Hybrid      string `xml:"r16hybrid"`
	R16Plyn        string `xml:"r16plyn"`
	R16Vodik       string `xml:"r16vodik"`
	R17Sadzba      string `xml:"r17sadzba1"`
	R18Kombi       string `xml:"r18KombiDoprava"`
	R19Sadzba      string `xml:"r19sadzba1"`
	R20PocMes      string `xml:"r20aPocMesS1"`
	R21Dan         string `xml:"r21dan1"`
	R22            string `xml:"r22"`
	R23            string `xml:"r23"`
	R24            string `xml:"r24"`
}

type xmlStrana struct {
	Oznacenie xmlOznacenie `xml:"oznacenie"`
	Stlpec1   xmlStlpec    `xml:"stlpec1"`
	Stlpec2   xmlStlpec    `xml:"stlpec2"`
}

type xmlTelo struct {
	R35              string      `xml:"r35"`
	R36              string      `xml:"r36"`
	R37              string      `xml:"r37"`
	R38              string      `xml:"r38"`
	R39              string      `xml:"r39"`
	R40              string      `xml:"r40"`
	Poznamky         string      `xml:"poznamky"`
	DatumVyhlasenia  string      `xml:"datumVyhlasenia"`
	Strany           []xmlStrana `xml:"strana3"`
}

type xmlDokument struct {
	XMLName  xml.Name    `xml:"dokument"`
	Hlavicka xmlHlavicka `xml:"hlavicka"`
	Telo     xmlTelo     `xml:"telo"`
}

func boolStr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func decStr(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}
	return v.String()
}

func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func buildStlpec(s *models.VehicleSlot) xmlStlpec {
	if s == nil {
		s = &models.VehicleSlot{}
	}
	return xmlStlpec{
		R01:           s.FirstRegistration,
		R02Vzniku:     s.LiabilityFrom,
		R02Zaniku:     s.LiabilityTo,
		R03Kategoria:  s.Category,
		R04KodBABB:    boolStr(s.BodyCodeBABB),
		R04KodBCBD:    boolStr(s.BodyCodeBCBD),
		R05Vzduchove:  boolStr(s.AirSuspension),
		R05IneSystemy: boolStr(s.OtherSuspension),
		R06EVC:        s.Plate,
		R07Objem:      floatStr(s.Displacement),
		R08Vykon:      floatStr(s.PowerKW),
		R09Hmotnost:   floatStr(s.WeightKG),
		R10Napravy:    intStr(s.AxleCount),
		R12Oslobodene: boolStr(s.Exempt),
		R13Sadzba:     decStr(s.BaseRate),

		R14Zvysenie10: boolStr(s.Band10),
		R14Zvysenie20: boolStr(s.Band20),
		R14Zvysenie30: boolStr(s.Band30),
		R14Zvysenie40: boolStr(s.Band40),
		R14Zvysenie50: boolStr(s.Band50),

		R15RocnaSadzba: decStr(s.RateAfterAge),
		R16Hybrid:      boolStr(s.Hybrid),
		R16Plyn:        boolStr(s.Gas),
		R16Vodik:       boolStr(s.Hydrogen),
		R17Sadzba:      decStr(s.RateAfterEco),
		R18Kombi:       boolStr(s.CombinedTransport),
		R19Sadzba:      decStr(s.FinalRate),
		R20PocMes:      intStr(s.MonthsOfUse),
		R21Dan:         decStr(s.Tax),
		R22:            decStr(s.Tax),
		R23:            decStr(s.Exemption),
		R24:            decStr(s.TaxAfterExemption),
	}
}

// Generate renders the declaration document with an XML header.
func (s *XMLService) Generate(d *models.Declaration) ([]byte, error) {
	tp := d.Taxpayer
	if tp == nil {
		tp = &models.Taxpayer{}
	}

	doc := xmlDokument{
		Hlavicka: xmlHlavicka{
			FO:             boolStr(tp.Individual),
			PO:             boolStr(tp.Corporate),
			Zahranicna:     boolStr(tp.Foreign),
			DIC:            tp.DIC,
			DatumNarodenia: tp.BirthDate,
			TypDP: xmlTypDP{
				RDP: boolStr(d.Kind == models.DeclarationRegular),
				ODP: boolStr(d.Kind == models.DeclarationCorrective),
				DDP: boolStr(d.Kind == models.DeclarationSupplementary),
			},
			Obdobie:      xmlObdobie{Od: d.PeriodFrom, Do: d.PeriodTo},
			ObchodneMeno: tp.Name,
			Sidlo: xmlSidlo{
				Ulica:    tp.Street,
				Cislo:    tp.HouseNumber,
				PSC:      tp.PostalCode,
				Obec:     tp.City,
				Stat:     tp.Country,
				Telefon:  tp.Phone,
				EmailFax: tp.Email,
			},
		},
		Telo: xmlTelo{
			R35:             intStr(d.Summary.VehicleCount),
			R36:             decStr(d.Summary.TotalTax),
			R37:             decStr(d.Summary.TotalExemption),
			R38:             decStr(d.Summary.TaxAfterExemption),
			R39:             decStr(d.Summary.AdvancesPaid),
			R40:             decStr(d.Summary.TaxDue),
			Poznamky:        d.Notes,
			DatumVyhlasenia: d.DeclaredAt,
		},
	}

	for _, p := range d.Pages {
		doc.Telo.Strany = append(doc.Telo.Strany, xmlStrana{
			Oznacenie: xmlOznacenie{
				Aktualna: strconv.Itoa(p.Number),
				Celkovo:  strconv.Itoa(p.Total),
			},
			Stlpec1: buildStlpec(p.Left),
			Stlpec2: buildStlpec(p.Right),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	return out, nil
}

// WriteFile generates the document and stores it under the configured
// storage path as dmv_<dic>_<year>.xml.
func (s *XMLService) WriteFile(d *models.Declaration) (string, error) {
	content, err := s.Generate(d)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return "", err
	}

	dic := "neznamy"
	if d.Taxpayer != nil && d.Taxpayer.DIC != "" {
		dic = d.Taxpayer.DIC
	}
	path := filepath.Join(s.storagePath, fmt.Sprintf("dmv_%s_%d.xml", dic, d.Year))

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
