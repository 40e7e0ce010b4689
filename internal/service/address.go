package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/repo"
)

type AddressService struct {
	DB *gorm.DB
}

type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Type       string `json:"type"`
}

func (s *AddressService) CreateAddress(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	if _, err := (repo.Users{DB: s.DB}).FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if in.Street == "" || in.City == "" || in.Country == "" {
		return nil, fmt.Errorf("%w: street, city and country are required", ErrValidation)
	}

	addrType, err := models.ParseAddressType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	address := models.Address{
		UserID:     userID,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Type:       addrType,
	}
	if err := (repo.Addresses{DB: s.DB}).Create(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AddressService) UpdateAddress(ctx context.Context, addressID, userID uint, in AddressInput) (*models.Address, error) {
	addresses := repo.Addresses{DB: s.DB}
	address, err := addresses.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, addressID)
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("%w: address %d does not belong to user %d", ErrValidation, addressID, userID)
	}

	if in.Street != "" {
		address.Street = in.Street
	}
	if in.City != "" {
		address.City = in.City
	}
	if in.State != "" {
		address.State = in.State
	}
	if in.PostalCode != "" {
		address.PostalCode = in.PostalCode
	}
	if in.Country != "" {
		address.Country = in.Country
	}
	if in.Type != "" {
		addrType, err := models.ParseAddressType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		address.Type = addrType
	}

	if err := addresses.Save(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, addressID, userID uint) error {
	addresses := repo.Addresses{DB: s.DB}
	address, err := addresses.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: address %d", ErrNotFound, addressID)
		}
		return err
	}
	if address.UserID != userID {
		return fmt.Errorf("%w: address %d does not belong to user %d", ErrValidation, addressID, userID)
	}
	return addresses.DeleteByID(ctx, addressID)
}

func (s *AddressService) GetAddress(ctx context.Context, addressID uint) (*models.Address, error) {
	address, err := (repo.Addresses{DB: s.DB}).FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, addressID)
		}
		return nil, err
	}
	return address, nil
}

func (s *AddressService) GetAddressesByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	return repo.Addresses{DB: s.DB}.FindByUser(ctx, userID)
}

func (s *AddressService) UserHasAddresses(ctx context.Context, userID uint) (bool, error) {
	return repo.Addresses{DB: s.DB}.ExistsForUser(ctx, userID)
}
