package repository

import (
	"github.com/jmoiron/sqlx"

	"motortax-web/internal/models"
	"motortax-web/internal/utils"
)

type TaxpayerRepository struct {
	db *sqlx.DB
}

func NewTaxpayerRepository(db *sqlx.DB) *TaxpayerRepository {
	return &TaxpayerRepository{db: db}
}

func (r *TaxpayerRepository) FindByID(id int) (*models.Taxpayer, error) {
	var taxpayer models.Taxpayer
	query := "SELECT * FROM taxpayers WHERE id = ? LIMIT 1"
	err := r.db.Get(&taxpayer, query, id)
	if err != nil {
		return nil, err
	}
	return &taxpayer, nil
}

func (r *TaxpayerRepository) FindByDIC(dic string) (*models.Taxpayer, error) {
	var taxpayer models.Taxpayer
	query := "SELECT * FROM taxpayers WHERE dic = ? LIMIT 1"
	err := r.db.Get(&taxpayer, query, dic)
	if err != nil {
		return nil, err
	}
	return &taxpayer, nil
}

func (r *TaxpayerRepository) List(params utils.PaginationParams) ([]models.Taxpayer, int64, error) {
	var total int64
	countQuery := "SELECT COUNT(*) FROM taxpayers"
	listQuery := "SELECT * FROM taxpayers"
	args := []interface{}{}

	if params.Search != "" {
		filter := " WHERE name LIKE ? OR dic LIKE ?"
		countQuery += filter
		listQuery += filter
		like := "%" + params.Search + "%"
		args = append(args, like, like)
	}

	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery += " ORDER BY name LIMIT ? OFFSET ?"
	args = append(args, params.Limit, utils.GetOffset(params.Page, params.Limit))

	taxpayers := []models.Taxpayer{}
	if err := r.db.Select(&taxpayers, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return taxpayers, total, nil
}

func (r *TaxpayerRepository) Create(taxpayer *models.Taxpayer) error {
	query := `INSERT INTO taxpayers (dic, individual, corporate, foreign_entity, name, birth_date,
	          street, house_number, postal_code, city, country, phone, email)
	          VALUES (:dic, :individual, :corporate, :foreign_entity, :name, :birth_date,
	          :street, :house_number, :postal_code, :city, :country, :phone, :email)`
	result, err := r.db.NamedExec(query, taxpayer)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	taxpayer.ID = int(id)
	return nil
}

func (r *TaxpayerRepository) Update(taxpayer *models.Taxpayer) error {
	query := `UPDATE taxpayers SET dic = :dic, individual = :individual, corporate = :corporate,
	          foreign_entity = :foreign_entity, name = :name, birth_date = :birth_date, street = :street,
	          house_number = :house_number, postal_code = :postal_code, city = :city,
	          country = :country, phone = :phone, email = :email WHERE id = :id`
	_, err := r.db.NamedExec(query, taxpayer)
	return err
}

func (r *TaxpayerRepository) Delete(id int) error {
	_, err := r.db.Exec("DELETE FROM taxpayers WHERE id = ?", id)
	return err
}
