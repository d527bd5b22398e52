package repository

import (
	"github.com/jmoiron/sqlx"

	"motortax-web/internal/models"
	"motortax-web/internal/utils"
)

type VehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) FindByID(id int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	query := "SELECT * FROM vehicles WHERE id = ? LIMIT 1"
	err := r.db.Get(&vehicle, query, id)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) FindByTaxpayer(taxpayerID int) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	query := "SELECT * FROM vehicles WHERE taxpayer_id = ? ORDER BY id"
	err := r.db.Select(&vehicles, query, taxpayerID)
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) List(taxpayerID int, params utils.PaginationParams) ([]models.Vehicle, int64, error) {
	var total int64
	countQuery := "SELECT COUNT(*) FROM vehicles WHERE taxpayer_id = ?"
	listQuery := "SELECT * FROM vehicles WHERE taxpayer_id = ?"
	args := []interface{}{taxpayerID}

	if params.Search != "" {
		filter := " AND (plate LIKE ? OR category LIKE ?)"
		countQuery += filter
		listQuery += filter
		like := "%" + params.Search + "%"
		args = append(args, like, like)
	}

	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, params.Limit, utils.GetOffset(params.Page, params.Limit))

	vehicles := []models.Vehicle{}
	if err := r.db.Select(&vehicles, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *VehicleRepository) Create(vehicle *models.Vehicle) error {
	query := `INSERT INTO vehicles (taxpayer_id, plate, category, first_registration,
	          liability_from, liability_to, displacement, power_kw, weight_kg, axle_count,
	          body_code_ba_bb, body_code_bc_bd, air_suspension, other_suspension,
	          hybrid, gas, hydrogen, combined_transport, exempt, exemption, months_of_use)
	          VALUES (:taxpayer_id, :plate, :category, :first_registration,
	          :liability_from, :liability_to, :displacement, :power_kw, :weight_kg, :axle_count,
	          :body_code_ba_bb, :body_code_bc_bd, :air_suspension, :other_suspension,
	          :hybrid, :gas, :hydrogen, :combined_transport, :exempt, :exemption, :months_of_use)`
	result, err := r.db.NamedExec(query, vehicle)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	vehicle.ID = int(id)
	return nil
}

// CreateBatch inserts imported vehicles in one transaction.
func (r *VehicleRepository) CreateBatch(taxpayerID int, vehicles []models.Vehicle) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO vehicles (taxpayer_id, plate, category, first_registration,
	          liability_from, liability_to, displacement, power_kw, weight_kg, axle_count,
	          body_code_ba_bb, body_code_bc_bd, air_suspension, other_suspension,
	          hybrid, gas, hydrogen, combined_transport, exempt, exemption, months_of_use)
	          VALUES (:taxpayer_id, :plate, :category, :first_registration,
	          :liability_from, :liability_to, :displacement, :power_kw, :weight_kg, :axle_count,
	          :body_code_ba_bb, :body_code_bc_bd, :air_suspension, :other_suspension,
	          :hybrid, :gas, :hydrogen, :combined_transport, :exempt, :exemption, :months_of_use)`

	for i := range vehicles {
		vehicles[i].TaxpayerID = taxpayerID
		if _, err := tx.NamedExec(query, &vehicles[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *VehicleRepository) Update(vehicle *models.Vehicle) error {
	query := `UPDATE vehicles SET plate = :plate, category = :category,
	          first_registration = :first_registration, liability_from = :liability_from,
	          liability_to = :liability_to, displacement = :displacement, power_kw = :power_kw,
	          weight_kg = :weight_kg, axle_count = :axle_count, body_code_ba_bb = :body_code_ba_bb,
	          body_code_bc_bd = :body_code_bc_bd, air_suspension = :air_suspension,
	          other_suspension = :other_suspension, hybrid = :hybrid, gas = :gas,
	          hydrogen = :hydrogen, combined_transport = :combined_transport, exempt = :exempt,
	          exemption = :exemption, months_of_use = :months_of_use WHERE id = :id`
	_, err := r.db.NamedExec(query, vehicle)
	return err
}

func (r *VehicleRepository) Delete(id int) error {
	_, err := r.db.Exec("DELETE FROM vehicles WHERE id = ?", id)
	return err
}
