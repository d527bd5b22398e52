package repository

import (
	"github.com/jmoiron/sqlx"

	"motortax-web/internal/models"
	"motortax-web/internal/utils"
)

type DeclarationRepository struct {
	db *sqlx.DB
}

func NewDeclarationRepository(db *sqlx.DB) *DeclarationRepository {
	return &DeclarationRepository{db: db}
}

func (r *DeclarationRepository) FindByID(id int) (*models.DeclarationRecord, error) {
	var record models.DeclarationRecord
	query := "SELECT * FROM declarations WHERE id = ? LIMIT 1"
	err := r.db.Get(&record, query, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *DeclarationRepository) FindByCode(code string) (*models.DeclarationRecord, error) {
	var record models.DeclarationRecord
	query := "SELECT * FROM declarations WHERE code = ? LIMIT 1"
	err := r.db.Get(&record, query, code)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *DeclarationRepository) List(params utils.PaginationParams) ([]models.DeclarationRecord, int64, error) {
	var total int64
	countQuery := "SELECT COUNT(*) FROM declarations"
	listQuery := "SELECT * FROM declarations"
	args := []interface{}{}

	if params.Search != "" {
		filter := " WHERE code LIKE ?"
		countQuery += filter
		listQuery += filter
		args = append(args, "%"+params.Search+"%")
	}

	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, params.Limit, utils.GetOffset(params.Page, params.Limit))

	records := []models.DeclarationRecord{}
	if err := r.db.Select(&records, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *DeclarationRepository) Create(record *models.DeclarationRecord) error {
	query := `INSERT INTO declarations (code, taxpayer_id, year, kind, status, total_tax, xml_path, error)
	          VALUES (:code, :taxpayer_id, :year, :kind, :status, :total_tax, :xml_path, :error)`
	result, err := r.db.NamedExec(query, record)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	record.ID = int(id)
	return nil
}

func (r *DeclarationRepository) UpdateStatus(id int, status string) error {
	_, err := r.db.Exec("UPDATE declarations SET status = ? WHERE id = ?", status, id)
	return err
}

// MarkCompleted records the generated file and the computed total.
func (r *DeclarationRepository) MarkCompleted(id int, xmlPath, totalTax string) error {
	query := "UPDATE declarations SET status = ?, xml_path = ?, total_tax = ? WHERE id = ?"
	_, err := r.db.Exec(query, models.DeclarationCompleted, xmlPath, totalTax, id)
	return err
}

func (r *DeclarationRepository) MarkFailed(id int, errMsg string) error {
	query := "UPDATE declarations SET status = ?, error = ? WHERE id = ?"
	_, err := r.db.Exec(query, models.DeclarationFailed, errMsg, id)
	return err
}
