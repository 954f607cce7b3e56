package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(fields, "; "))
		}
		return errors.Join(domain.ErrValidation, err)
	}
	return nil
}

func nonNegative(name string, d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrValidation, name)
	}
	return nil
}

type stayQuery struct {
	CheckIn  string `validate:"required,datetime=2006-01-02"`
	CheckOut string `validate:"required,datetime=2006-01-02"`
}

func (q stayQuery) stay() (domain.Stay, error) {
	if err := validateStruct(q); err != nil {
		return domain.Stay{}, err
	}
	return domain.NewStay(q.CheckIn, q.CheckOut)
}

type roomTypeRequest struct {
	Name            string                     `json:"name" validate:"required,max=100"`
	BasePrice       decimal.Decimal            `json:"basePrice"`
	Capacity        int                        `json:"capacity" validate:"gte=1,lte=20"`
	WeekdayPricing  map[string]decimal.Decimal `json:"weekdayPricing"`
	SeasonalPricing []seasonalRateRequest      `json:"seasonalPricing" validate:"dive"`
}

type seasonalRateRequest struct {
	Name      string          `json:"name"`
	StartDate string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string          `json:"endDate" validate:"required,datetime=2006-01-02"`
	Price     decimal.Decimal `json:"price"`
}

func (req roomTypeRequest) toDomain(hotelID, id string) (domain.RoomType, error) {
	if err := nonNegative("basePrice", &req.BasePrice); err != nil {
		return domain.RoomType{}, err
	}
	rt := domain.RoomType{
		ID:        id,
		HotelID:   hotelID,
		Name:      req.Name,
		BasePrice: req.BasePrice,
		Capacity:  req.Capacity,
	}
	if len(req.WeekdayPricing) > 0 {
		rt.WeekdayPricing = domain.WeekdayPricing{}
		for day, p := range req.WeekdayPricing {
			rt.WeekdayPricing[strings.ToLower(day)] = p
		}
	}
	for _, s := range req.SeasonalPricing {
		rt.SeasonalPricing = append(rt.SeasonalPricing, domain.SeasonalRate{
			Name:  s.Name,
			Start: domain.Date(s.StartDate),
			End:   domain.Date(s.EndDate),
			Price: s.Price,
		})
	}
	return rt, nil
}

type roomRequest struct {
	Number     string `json:"roomNumber" validate:"required,max=20"`
	RoomTypeID string `json:"roomTypeId" validate:"required"`
	Floor      int    `json:"floor"`
	Status     string `json:"status" validate:"omitempty,oneof=vacant occupied dirty maintenance reserved"`
}

type createReservationRequest struct {
	CustomerID   string           `json:"customerId" validate:"required"`
	RoomID       string           `json:"roomId" validate:"required"`
	RoomTypeID   string           `json:"roomTypeId" validate:"required"`
	CheckInDate  string           `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string           `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	Guests       int              `json:"guests" validate:"gte=1"`
	Source       string           `json:"source"`
	TotalPrice   *decimal.Decimal `json:"totalPrice"`
	PaidAmount   *decimal.Decimal `json:"paidAmount"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
}

func (req createReservationRequest) toInput(hotelID string) (app.CreateReservationInput, error) {
	stay, err := domain.NewStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return app.CreateReservationInput{}, err
	}
	if err := errors.Join(nonNegative("totalPrice", req.TotalPrice), nonNegative("paidAmount", req.PaidAmount)); err != nil {
		return app.CreateReservationInput{}, err
	}
	in := app.CreateReservationInput{
		HotelID:    hotelID,
		CustomerID: req.CustomerID,
		RoomID:     req.RoomID,
		RoomTypeID: req.RoomTypeID,
		Stay:       stay,
		Guests:     req.Guests,
		Source:     req.Source,
		TotalPrice: req.TotalPrice,
		Notes:      req.Notes,
	}
	if req.PaidAmount != nil {
		in.PaidAmount = *req.PaidAmount
	}
	return in, nil
}

type updateReservationRequest struct {
	RoomID       *string          `json:"roomId" validate:"omitempty,min=1"`
	RoomTypeID   *string          `json:"roomTypeId" validate:"omitempty,min=1"`
	CheckInDate  *string          `json:"checkInDate" validate:"omitempty,datetime=2006-01-02"`
	CheckOutDate *string          `json:"checkOutDate" validate:"omitempty,datetime=2006-01-02"`
	Guests       *int             `json:"guests" validate:"omitempty,gte=1"`
	Source       *string          `json:"source"`
	TotalPrice   *decimal.Decimal `json:"totalPrice"`
	PaidAmount   *decimal.Decimal `json:"paidAmount"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
}

func (req updateReservationRequest) toInput() (app.UpdateReservationInput, error) {
	if err := errors.Join(nonNegative("totalPrice", req.TotalPrice), nonNegative("paidAmount", req.PaidAmount)); err != nil {
		return app.UpdateReservationInput{}, err
	}
	in := app.UpdateReservationInput{
		RoomID:     req.RoomID,
		RoomTypeID: req.RoomTypeID,
		Guests:     req.Guests,
		Source:     req.Source,
		TotalPrice: req.TotalPrice,
		PaidAmount: req.PaidAmount,
		Notes:      req.Notes,
	}
	if req.CheckInDate != nil {
		d := domain.Date(*req.CheckInDate)
		in.CheckIn = &d
	}
	if req.CheckOutDate != nil {
		d := domain.Date(*req.CheckOutDate)
		in.CheckOut = &d
	}
	return in, nil
}

type groupRoomRequest struct {
	RoomID     string          `json:"roomId" validate:"required"`
	RoomTypeID string          `json:"roomTypeId" validate:"required"`
	Guests     int             `json:"guests" validate:"gte=1"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type createGroupRequest struct {
	CustomerID   string             `json:"customerId" validate:"required"`
	CheckInDate  string             `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string             `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	Source       string             `json:"source"`
	Notes        *string            `json:"notes" validate:"omitempty,max=2000"`
	Rooms        []groupRoomRequest `json:"rooms" validate:"dive"`
}

func (req createGroupRequest) toInput(hotelID string) (app.CreateGroupInput, error) {
	stay, err := domain.NewStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return app.CreateGroupInput{}, err
	}
	in := app.CreateGroupInput{
		HotelID:    hotelID,
		CustomerID: req.CustomerID,
		Stay:       stay,
		Source:     req.Source,
		Notes:      req.Notes,
	}
	for _, r := range req.Rooms {
		if err := nonNegative("totalPrice", &r.TotalPrice); err != nil {
			return app.CreateGroupInput{}, err
		}
		in.Rooms = append(in.Rooms, app.GroupRoom{
			RoomID:     r.RoomID,
			RoomTypeID: r.RoomTypeID,
			Guests:     r.Guests,
			TotalPrice: r.TotalPrice,
		})
	}
	return in, nil
}

type groupCreatedResponse struct {
	GroupID string `json:"groupId"`
}
