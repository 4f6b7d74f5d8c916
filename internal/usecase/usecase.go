package usecase

import "context"

type CatalogUC interface {
	SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductInfo, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, req *SaveProductReq) (*ProductInfo, error)
	UpdateProduct(ctx context.Context, id int64, req *SaveProductReq) (*ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type UserUC interface {
	Signup(ctx context.Context, req *SignupReq) (*AuthRes, error)
	Signin(ctx context.Context, req *SigninReq) (*AuthRes, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileReq) (*AuthRes, error)
	ListUsers(ctx context.Context, page int) (*UserPage, error)
	GetUser(ctx context.Context, id int64) (*UserInfo, error)
	AdminUpdateUser(ctx context.Context, id int64, req *AdminUpdateUserReq) (*UserInfo, error)
	DeleteUser(ctx context.Context, id int64) error
}

type OrderUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*OrderInfo, error)
	GetOrder(ctx context.Context, req *GetOrderReq) (*OrderInfo, error)
	ListMine(ctx context.Context, userID int64) ([]OrderInfo, error)
	ListOrders(ctx context.Context, page int) (*OrderPage, error)
	DeleteOrder(ctx context.Context, id string) error
	CreatePayment(ctx context.Context, req *GetOrderReq) (*CreatePaymentRes, error)
	Pay(ctx context.Context, req *PayOrderReq) (*OrderInfo, error)
	Deliver(ctx context.Context, id string) (*OrderInfo, error)
}

type ReportUC interface {
	Summary(ctx context.Context) (*SummaryRes, error)
}
