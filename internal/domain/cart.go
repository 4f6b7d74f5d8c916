package domain

import "github.com/techmart/backend/pkg/e"

// CartItem — строка корзины со снапшотом товара на момент добавления.
type CartItem struct {
	ProductID int64
	Slug      string
	Name      string
	Image     string
	Price     int64
	Quantity  int32
}

// Cart — корзина покупателя. Живёт только на стороне клиента и в памяти
// процесса, сервер её не персистит: источником истины по остаткам всегда
// остаётся каталог на момент оформления заказа.
type Cart struct {
	Items []CartItem
}

func NewCart() *Cart {
	return &Cart{Items: make([]CartItem, 0)}
}

// AddItem добавляет товар в корзину, суммируя количество с уже лежащей
// строкой того же товара. Возвращает e.ErrOutOfStock, если итоговое
// количество превышает текущий остаток товара.
func (c *Cart) AddItem(p *Product, qty int32) error {
	if qty <= 0 {
		return e.WrapField("quantity", e.ErrValidation)
	}

	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			if c.Items[i].Quantity+qty > p.Stock {
				return e.ErrOutOfStock
			}
			c.Items[i].Quantity += qty
			return nil
		}
	}

	if qty > p.Stock {
		return e.ErrOutOfStock
	}

	c.Items = append(c.Items, CartItem{
		ProductID: p.ID,
		Slug:      p.Slug,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		Quantity:  qty,
	})

	return nil
}

// RemoveItem удаляет строку товара из корзины.
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear опустошает корзину.
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}

// ItemsPrice возвращает сумму по строкам корзины в центах.
func (c *Cart) ItemsPrice() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}
