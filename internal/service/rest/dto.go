package rest

import (
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type createOrderRequest struct {
	UserID           string             `json:"userId"`
	Items            []orderItemRequest `json:"items"`
	ShippingAddress1 string             `json:"shippingAddress1"`
	ShippingAddress2 string             `json:"shippingAddress2"`
	City             string             `json:"city"`
	Zip              string             `json:"zip"`
	Country          string             `json:"country"`
	Phone            string             `json:"phone"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int32            `json:"quantity"`
	Product   *productResponse `json:"product,omitempty"`
}

type statusChangeResponse struct {
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

type orderResponse struct {
	ID               string                 `json:"id"`
	Items            []orderItemResponse    `json:"items"`
	ShippingAddress1 string                 `json:"shippingAddress1"`
	ShippingAddress2 string                 `json:"shippingAddress2,omitempty"`
	City             string                 `json:"city"`
	Zip              string                 `json:"zip"`
	Country          string                 `json:"country"`
	Phone            string                 `json:"phone"`
	Status           string                 `json:"status"`
	TotalPrice       string                 `json:"totalPrice"`
	UserID           string                 `json:"userId"`
	User             *userResponse          `json:"user,omitempty"`
	DateOrdered      time.Time              `json:"dateOrdered"`
	StatusHistory    []statusChangeResponse `json:"statusHistory,omitempty"`
}

type listOrdersResponse struct {
	Orders     []orderResponse `json:"orders"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalCount int64           `json:"totalCount"`
}

type statisticsResponse struct {
	TotalOrders       int64  `json:"totalOrders"`
	TotalRevenue      string `json:"totalRevenue"`
	AverageOrderValue string `json:"averageOrderValue"`
	PendingOrders     int64  `json:"pendingOrders"`
	CompletedOrders   int64  `json:"completedOrders"`
	CancelledOrders   int64  `json:"cancelledOrders"`
}

type productRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           string  `json:"price"`
	CategoryID      string  `json:"categoryId"`
	CountInStock    int32   `json:"countInStock"`
	Rating          float64 `json:"rating"`
	NumReviews      int32   `json:"numReviews"`
	IsFeatured      bool    `json:"isFeatured"`
}

type productResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	RichDescription string    `json:"richDescription,omitempty"`
	Image           string    `json:"image,omitempty"`
	Brand           string    `json:"brand,omitempty"`
	Price           string    `json:"price"`
	CategoryID      string    `json:"categoryId"`
	CountInStock    int32     `json:"countInStock"`
	Rating          float64   `json:"rating"`
	NumReviews      int32     `json:"numReviews"`
	IsFeatured      bool      `json:"isFeatured"`
	DateCreated     time.Time `json:"dateCreated"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

type registerUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// userResponse не содержит password hash: он не покидает хранилище.
type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return orderResponse{
		ID:               o.ID,
		Items:            items,
		ShippingAddress1: o.ShippingAddress1,
		ShippingAddress2: o.ShippingAddress2,
		City:             o.City,
		Zip:              o.Zip,
		Country:          o.Country,
		Phone:            o.Phone,
		Status:           string(o.Status),
		TotalPrice:       o.TotalPrice.String(),
		UserID:           o.UserID,
		DateOrdered:      o.DateOrdered,
	}
}

func toOrderDetailsResponse(details order.Details) orderResponse {
	resp := toOrderResponse(details.Order)

	if details.User.ID != "" {
		user := toUserResponse(details.User)
		resp.User = &user
	}
	for i := range resp.Items {
		if product, ok := details.Products[resp.Items[i].ProductID]; ok {
			expanded := toProductResponse(product)
			resp.Items[i].Product = &expanded
		}
	}
	for _, change := range details.History {
		resp.StatusHistory = append(resp.StatusHistory, statusChangeResponse{
			From:       string(change.From),
			To:         string(change.To),
			OccurredAt: change.OccurredAt,
		})
	}
	return resp
}

func toStatisticsResponse(stats domain.OrderStatistics) statisticsResponse {
	return statisticsResponse{
		TotalOrders:       stats.TotalOrders,
		TotalRevenue:      stats.TotalRevenue.String(),
		AverageOrderValue: stats.AverageOrderValue.StringFixed(2),
		PendingOrders:     stats.PendingOrders,
		CompletedOrders:   stats.CompletedOrders,
		CancelledOrders:   stats.CancelledOrders,
	}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		RichDescription: p.RichDescription,
		Image:           p.Image,
		Brand:           p.Brand,
		Price:           p.Price.String(),
		CategoryID:      p.CategoryID,
		CountInStock:    p.CountInStock,
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		IsFeatured:      p.IsFeatured,
		DateCreated:     p.DateCreated,
	}
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		IsAdmin:   u.IsAdmin,
		Street:    u.Street,
		Apartment: u.Apartment,
		City:      u.City,
		Zip:       u.Zip,
		Country:   u.Country,
	}
}
